package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/logger"
)

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends transactional email through SendGrid. Every method is
// fire-and-forget: failures are logged and never propagated, so email outages
// cannot affect the payment flow. With no API key configured the mailer logs
// and drops, which keeps dev environments quiet.
type Mailer struct {
	client sender
	from   *mail.Email
	logg   *logger.Logger
}

// NewMailer builds a mailer from config. A blank API key disables delivery.
func NewMailer(cfg config.SendgridConfig, logg *logger.Logger) *Mailer {
	m := &Mailer{
		from: mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		logg: logg,
	}
	if cfg.APIKey != "" {
		m.client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return m
}

func (m *Mailer) send(ctx context.Context, toName, toEmail, subject, plain, html string) {
	if m.client == nil {
		m.logg.Info(m.logg.WithField(ctx, "subject", subject), "email.skipped.no_api_key")
		return
	}

	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), plain, html)
	response, err := m.client.SendWithContext(ctx, message)
	lctx := m.logg.WithField(ctx, "subject", subject)
	if err != nil {
		m.logg.Error(lctx, "email.send.failed", err)
		return
	}
	if response.StatusCode >= 400 {
		m.logg.Error(lctx, "email.send.rejected", fmt.Errorf("sendgrid status %d", response.StatusCode))
		return
	}
	m.logg.Info(lctx, "email.sent")
}

// Welcome greets a newly registered user.
func (m *Mailer) Welcome(ctx context.Context, user *models.User) {
	plain := fmt.Sprintf("Hi %s,\n\nWelcome to GiveBridge. Your account is ready.\n", user.Name)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Welcome to GiveBridge. Your account is ready.</p>", user.Name)
	m.send(ctx, user.Name, user.Email, "Welcome to GiveBridge", plain, html)
}

// DonationReceipt thanks a donor after a successful payment.
func (m *Mailer) DonationReceipt(ctx context.Context, donor *models.User, donation donations.DonationDTO) {
	amount := donation.Amount.StringFixed(2)
	plain := fmt.Sprintf("Hi %s,\n\nThank you for your $%s donation to %s.\n", donor.Name, amount, donation.CauseName)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Thank you for your <strong>$%s</strong> donation to %s.</p>",
		donor.Name, amount, donation.CauseName)
	m.send(ctx, donor.Name, donor.Email, "Thank you for your donation", plain, html)
}

// DonationFailed tells a donor their payment did not go through.
func (m *Mailer) DonationFailed(ctx context.Context, donor *models.User, donation donations.DonationDTO) {
	reason := "Payment failed"
	if donation.FailureReason != nil && *donation.FailureReason != "" {
		reason = *donation.FailureReason
	}
	amount := donation.Amount.StringFixed(2)
	plain := fmt.Sprintf("Hi %s,\n\nYour $%s donation to %s could not be processed: %s.\n",
		donor.Name, amount, donation.CauseName, reason)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your $%s donation to %s could not be processed: %s.</p>",
		donor.Name, amount, donation.CauseName, reason)
	m.send(ctx, donor.Name, donor.Email, "Your donation could not be processed", plain, html)
}

// VerifyOTP delivers the email verification code.
func (m *Mailer) VerifyOTP(ctx context.Context, user *models.User, code string) {
	plain := fmt.Sprintf("Hi %s,\n\nYour GiveBridge verification code is %s. It expires in 24 hours.\n", user.Name, code)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your GiveBridge verification code is <strong>%s</strong>. It expires in 24 hours.</p>",
		user.Name, code)
	m.send(ctx, user.Name, user.Email, "Verify your email", plain, html)
}

// PasswordResetOTP delivers the password reset code.
func (m *Mailer) PasswordResetOTP(ctx context.Context, user *models.User, code string) {
	plain := fmt.Sprintf("Hi %s,\n\nYour GiveBridge password reset code is %s. It expires in 15 minutes.\n", user.Name, code)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your GiveBridge password reset code is <strong>%s</strong>. It expires in 15 minutes.</p>",
		user.Name, code)
	m.send(ctx, user.Name, user.Email, "Reset your password", plain, html)
}
