package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/givebridge/givebridge-backend/internal/aggregation"
	"github.com/givebridge/givebridge-backend/internal/auth"
	"github.com/givebridge/givebridge-backend/internal/causes"
	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/internal/users"
	pkgauth "github.com/givebridge/givebridge-backend/pkg/auth"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/enums"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/pagination"
)

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResult, error) {
	return &auth.AuthResult{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

func (stubAuthService) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubAuthService) SendVerifyOTP(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (stubAuthService) VerifyAccount(ctx context.Context, userID uuid.UUID, code string) error {
	return nil
}

func (stubAuthService) SendPasswordResetOTP(ctx context.Context, email string, role enums.UserRole) error {
	return nil
}

func (stubAuthService) ResetPassword(ctx context.Context, email string, role enums.UserRole, code, newPassword string) error {
	return nil
}

func (stubAuthService) ApproveAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubAuthService) DenyAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubCausesService struct{}

func (stubCausesService) Create(ctx context.Context, input causes.CreateCauseInput) (*causes.CauseDTO, error) {
	return &causes.CauseDTO{}, nil
}

func (stubCausesService) Get(ctx context.Context, id uuid.UUID) (*causes.CauseDTO, error) {
	return &causes.CauseDTO{ID: id}, nil
}

func (stubCausesService) List(ctx context.Context) ([]causes.CauseDTO, error) {
	return []causes.CauseDTO{}, nil
}

func (stubCausesService) Update(ctx context.Context, id uuid.UUID, input causes.UpdateCauseInput) (*causes.CauseDTO, error) {
	return &causes.CauseDTO{ID: id}, nil
}

func (stubCausesService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubDonationsService struct{}

func (stubDonationsService) CreateIntent(ctx context.Context, input donations.CreateIntentInput) (*donations.IntentResult, error) {
	return &donations.IntentResult{}, nil
}

func (stubDonationsService) Confirm(ctx context.Context, input donations.ConfirmInput) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{}, nil
}

func (stubDonationsService) ApplyGatewayOutcome(ctx context.Context, externalRef string, succeeded bool, failureReason string) (*donations.DonationDTO, bool, error) {
	return nil, false, nil
}

func (stubDonationsService) ListByDonor(ctx context.Context, donorID uuid.UUID, params pagination.Params) (*donations.DonationList, error) {
	return &donations.DonationList{Donations: []donations.DonationDTO{}}, nil
}

func (stubDonationsService) Get(ctx context.Context, requesterID uuid.UUID, role enums.UserRole, id uuid.UUID) (*donations.DonationDTO, error) {
	return &donations.DonationDTO{ID: id}, nil
}

type stubAggregationService struct{}

func (stubAggregationService) UserSummary(ctx context.Context, userID uuid.UUID) (*aggregation.UserSummaryDTO, error) {
	return &aggregation.UserSummaryDTO{UserID: userID}, nil
}

func (stubAggregationService) SystemSummary(ctx context.Context) (*aggregation.SystemSummaryDTO, error) {
	return &aggregation.SystemSummaryDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:             cfg,
		Logger:             logg,
		Sessions:           stubSessionManager{},
		AuthService:        stubAuthService{},
		CausesService:      stubCausesService{},
		DonationsService:   stubDonationsService{},
		AggregationService: stubAggregationService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveNoAuthRequired(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCausesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/causes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public causes got %d", resp.Code)
	}
}

func TestDonationsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestDonationsSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/donations", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDonor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	donor := httptest.NewRequest(http.MethodGet, "/api/admin/v1/donations", nil)
	donor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDonor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, donor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for donor got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/donations", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestUsersMeRequiresAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleDonor))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
}
