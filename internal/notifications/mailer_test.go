package notifications

import (
	"context"
	"io"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type capturingSender struct {
	sent   []*mail.SGMailV3
	status int
}

func (c *capturingSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	c.sent = append(c.sent, email)
	status := c.status
	if status == 0 {
		status = 202
	}
	return &rest.Response{StatusCode: status}, nil
}

func newTestMailer(sender sender) *Mailer {
	m := NewMailer(config.SendgridConfig{
		APIKey:      "SG.test",
		DefaultFrom: "noreply@givebridge.org",
		FromName:    "GiveBridge",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	m.client = sender
	return m
}

func TestDonationReceiptAddressesDonor(t *testing.T) {
	sender := &capturingSender{}
	m := newTestMailer(sender)

	donor := &models.User{Name: "Dana Donor", Email: "dana@example.com"}
	m.DonationReceipt(context.Background(), donor, donations.DonationDTO{
		CauseName: "Clean Water",
		Amount:    decimal.RequireFromString("25.00"),
	})

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Thank you for your donation", msg.Subject)
	require.Len(t, msg.Personalizations, 1)
	require.Len(t, msg.Personalizations[0].To, 1)
	assert.Equal(t, "dana@example.com", msg.Personalizations[0].To[0].Address)
	assert.Contains(t, msg.Content[0].Value, "$25.00")
	assert.Contains(t, msg.Content[0].Value, "Clean Water")
}

func TestDonationFailedIncludesReason(t *testing.T) {
	sender := &capturingSender{}
	m := newTestMailer(sender)

	reason := "card_declined"
	donor := &models.User{Name: "Dana", Email: "dana@example.com"}
	m.DonationFailed(context.Background(), donor, donations.DonationDTO{
		CauseName:     "Clean Water",
		Amount:        decimal.RequireFromString("10.00"),
		FailureReason: &reason,
	})

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Content[0].Value, "card_declined")
}

func TestMailerWithoutAPIKeyDropsQuietly(t *testing.T) {
	m := NewMailer(config.SendgridConfig{}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))

	// Must not panic or error without a configured client.
	m.Welcome(context.Background(), &models.User{Name: "Dana", Email: "dana@example.com"})
}

func TestRejectedDeliveryIsLoggedNotFatal(t *testing.T) {
	sender := &capturingSender{status: 401}
	m := newTestMailer(sender)

	m.VerifyOTP(context.Background(), &models.User{Name: "Dana", Email: "dana@example.com"}, "123456")
	require.Len(t, sender.sent, 1)
}
