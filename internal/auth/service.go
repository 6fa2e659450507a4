package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/givebridge/givebridge-backend/internal/users"
	pkgauth "github.com/givebridge/givebridge-backend/pkg/auth"
	"github.com/givebridge/givebridge-backend/pkg/auth/session"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	pkgerrors "github.com/givebridge/givebridge-backend/pkg/errors"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/security"
)

const (
	otpLength       = 6
	otpPurposeEmail = "verify"
	otpPurposeReset = "reset"

	verifyOTPTTL = 24 * time.Hour
	resetOTPTTL  = 15 * time.Minute

	msgInvalidCredentials = "invalid credentials"
	msgInvalidOTP         = "invalid or expired code"
)

// Service owns account lifecycle: registration, login, logout, email
// verification, and password reset.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*users.UserDTO, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, accessID string) error
	Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	SendVerifyOTP(ctx context.Context, userID uuid.UUID) error
	VerifyAccount(ctx context.Context, userID uuid.UUID, code string) error
	SendPasswordResetOTP(ctx context.Context, email string, role enums.UserRole) error
	ResetPassword(ctx context.Context, email string, role enums.UserRole, code, newPassword string) error
	ApproveAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error)
	DenyAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error)
}

type usersRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmailAndRole(ctx context.Context, email string, role enums.UserRole) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateApproval(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, decidedAt time.Time) error
}

type sessionManager interface {
	Open(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

type otpStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	OTPKey(purpose, userID string) string
}

type mailer interface {
	Welcome(ctx context.Context, user *models.User)
	VerifyOTP(ctx context.Context, user *models.User, code string)
	PasswordResetOTP(ctx context.Context, user *models.User, code string)
}

type service struct {
	repo     usersRepository
	sessions sessionManager
	otp      otpStore
	mail     mailer
	logg     *logger.Logger

	jwt      config.JWTConfig
	password config.PasswordConfig
	approval config.ApprovalConfig
}

// ServiceParams bundles the dependencies required to build the auth service.
type ServiceParams struct {
	Repo     usersRepository
	Sessions sessionManager
	OTP      otpStore
	Mailer   mailer
	Logger   *logger.Logger
	JWT      config.JWTConfig
	Password config.PasswordConfig
	Approval config.ApprovalConfig
}

// NewService constructs an auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		otp:      params.OTP,
		mail:     params.Mailer,
		logg:     params.Logger,
		jwt:      params.JWT,
		password: params.Password,
		approval: params.Approval,
	}, nil
}

// Register creates an account. Emails are unique per role, so the same person
// can hold both a donor and an admin account. Admin signups start unapproved
// unless the email is a configured superadmin.
func (s *service) Register(ctx context.Context, input RegisterInput) (*users.UserDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleDonor
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if _, err := s.repo.FindByEmailAndRole(ctx, email, role); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	approval := enums.ApprovalStatusApproved
	if role == enums.UserRoleAdmin && !s.approval.IsSuperadmin(email) {
		approval = enums.ApprovalStatusPending
	}

	user, err := s.repo.Create(ctx, users.CreateUserDTO{
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		ApprovalStatus: approval,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.registered")
	s.sendMail(ctx, func(detached context.Context) { s.mail.Welcome(detached, user) })

	return users.FromModel(user), nil
}

// Login checks credentials and opens a session. Failures are deliberately
// indistinguishable between unknown account and wrong password.
func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = enums.UserRoleDonor
	}

	user, err := s.repo.FindByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
	}

	if user.Role == enums.UserRoleAdmin && user.ApprovalStatus != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account awaiting approval")
	}

	accessID := session.NewAccessID()
	if err := s.sessions.Open(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logg.Error(ctx, "auth.last_login.update", err)
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.login")
	return &AuthResult{Token: token, User: *users.FromModel(user)}, nil
}

// Logout revokes the session marker behind the token's jti.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Profile returns the authenticated user's account.
func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

// SendVerifyOTP issues a 24h email verification code.
func (s *service) SendVerifyOTP(ctx context.Context, userID uuid.UUID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return pkgerrors.New(pkgerrors.CodeConflict, "account already verified")
	}

	code, err := security.GenerateOTP(otpLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}
	key := s.otp.OTPKey(otpPurposeEmail, user.ID.String())
	if err := s.otp.Set(ctx, key, code, verifyOTPTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store code")
	}

	s.sendMail(ctx, func(detached context.Context) { s.mail.VerifyOTP(detached, user, code) })
	return nil
}

// VerifyAccount redeems an email verification code.
func (s *service) VerifyAccount(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	key := s.otp.OTPKey(otpPurposeEmail, user.ID.String())
	if err := s.redeemOTP(ctx, key, code); err != nil {
		return err
	}
	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark verified")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.verified")
	return nil
}

// SendPasswordResetOTP issues a 15m reset code. An unknown account is
// acknowledged without error so the endpoint cannot probe registered emails.
func (s *service) SendPasswordResetOTP(ctx context.Context, email string, role enums.UserRole) error {
	user, err := s.repo.FindByEmailAndRole(ctx, normalizeEmail(email), roleOrDonor(role))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, "auth.reset.unknown_email")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	code, err := security.GenerateOTP(otpLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate code")
	}
	key := s.otp.OTPKey(otpPurposeReset, user.ID.String())
	if err := s.otp.Set(ctx, key, code, resetOTPTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store code")
	}

	s.sendMail(ctx, func(detached context.Context) { s.mail.PasswordResetOTP(detached, user, code) })
	return nil
}

// ResetPassword redeems a reset code and replaces the password hash.
func (s *service) ResetPassword(ctx context.Context, email string, role enums.UserRole, code, newPassword string) error {
	user, err := s.repo.FindByEmailAndRole(ctx, normalizeEmail(email), roleOrDonor(role))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidOTP)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	key := s.otp.OTPKey(otpPurposeReset, user.ID.String())
	if err := s.redeemOTP(ctx, key, code); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.password.reset")
	return nil
}

// ApproveAdmin marks a pending admin approved. Only configured superadmins may
// decide.
func (s *service) ApproveAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error) {
	return s.decideAdmin(ctx, actorID, targetID, enums.ApprovalStatusApproved)
}

// DenyAdmin marks a pending admin denied.
func (s *service) DenyAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error) {
	return s.decideAdmin(ctx, actorID, targetID, enums.ApprovalStatusDenied)
}

func (s *service) decideAdmin(ctx context.Context, actorID, targetID uuid.UUID, decision enums.ApprovalStatus) (*users.UserDTO, error) {
	actor, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.approval.IsSuperadmin(actor.Email) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin required")
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account is not an admin")
	}

	if err := s.repo.UpdateApproval(ctx, target.ID, decision, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update approval")
	}

	updated, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"actor_id":  actorID.String(),
		"target_id": targetID.String(),
		"decision":  string(decision),
	}), "auth.admin.decided")
	return users.FromModel(updated), nil
}

func (s *service) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func (s *service) redeemOTP(ctx context.Context, key, code string) error {
	stored, err := s.otp.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidOTP)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read code")
	}
	if code == "" || stored != code {
		return pkgerrors.New(pkgerrors.CodeValidation, msgInvalidOTP)
	}
	if err := s.otp.Del(ctx, key); err != nil {
		s.logg.Error(ctx, "auth.otp.delete", err)
	}
	return nil
}

func (s *service) sendMail(ctx context.Context, fn func(ctx context.Context)) {
	if s.mail == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go fn(detached)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roleOrDonor(role enums.UserRole) enums.UserRole {
	if role == "" {
		return enums.UserRoleDonor
	}
	return role
}
