package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/givebridge-backend/internal/aggregation"
	"github.com/givebridge/givebridge-backend/pkg/db/models"
	"github.com/givebridge/givebridge-backend/pkg/enums"
)

type stubAggregationService struct {
	user   *aggregation.UserSummaryDTO
	system *aggregation.SystemSummaryDTO
	err    error

	lastUserID uuid.UUID
}

func (s *stubAggregationService) UserSummary(ctx context.Context, userID uuid.UUID) (*aggregation.UserSummaryDTO, error) {
	s.lastUserID = userID
	return s.user, s.err
}

func (s *stubAggregationService) SystemSummary(ctx context.Context) (*aggregation.SystemSummaryDTO, error) {
	return s.system, s.err
}

type stubDonorLister struct {
	donors []models.User
	err    error

	lastRole enums.UserRole
}

func (s *stubDonorLister) ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	s.lastRole = role
	return s.donors, s.err
}

func TestUsersMeReturnsSummaryForCaller(t *testing.T) {
	userID := uuid.New()
	svc := &stubAggregationService{user: &aggregation.UserSummaryDTO{
		UserID:       userID,
		Name:         "Dana Donor",
		TotalDonated: decimal.RequireFromString("35.00"),
	}}
	handler := UsersMe(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/users/me", nil, userID, "donor")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected summary for %s, got %s", userID, svc.lastUserID)
	}

	var envelope struct {
		Data struct {
			TotalDonated string `json:"total_donated"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalDonated != "35" {
		t.Fatalf("expected total 35, got %q", envelope.Data.TotalDonated)
	}
}

func TestAdminDonationsReturnsStats(t *testing.T) {
	svc := &stubAggregationService{system: &aggregation.SystemSummaryDTO{
		Stats: aggregation.SystemStats{Total: 4, Success: 2, Pending: 1, Failed: 1},
	}}
	handler := AdminDonations(svc, nil)

	req := authedRequest(http.MethodGet, "/api/admin/v1/donations", nil, uuid.New(), "admin")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Stats aggregation.SystemStats `json:"stats"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Stats.Total != 4 || envelope.Data.Stats.Success != 2 {
		t.Fatalf("unexpected stats: %+v", envelope.Data.Stats)
	}
}

func TestAdminDonorsStripsCredentials(t *testing.T) {
	repo := &stubDonorLister{donors: []models.User{{
		ID:           uuid.New(),
		Name:         "Dana Donor",
		Email:        "donor@example.com",
		PasswordHash: "argon2id$secret",
		Role:         enums.UserRoleDonor,
	}}}
	handler := AdminDonors(repo, nil)

	req := authedRequest(http.MethodGet, "/api/admin/v1/donors", nil, uuid.New(), "admin")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if repo.lastRole != enums.UserRoleDonor {
		t.Fatalf("expected donor listing, got %q", repo.lastRole)
	}

	body := resp.Body.String()
	if !json.Valid([]byte(body)) {
		t.Fatalf("invalid json: %s", body)
	}
	if strings.Contains(body, "argon2id$secret") {
		t.Fatalf("password hash leaked into response: %s", body)
	}
}
