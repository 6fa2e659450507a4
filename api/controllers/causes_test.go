package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/givebridge/givebridge-backend/internal/causes"
)

type stubCausesService struct {
	cause *causes.CauseDTO
	list  []causes.CauseDTO
	err   error

	lastCreate causes.CreateCauseInput
	lastUpdate causes.UpdateCauseInput
	deletedID  uuid.UUID
}

func (s *stubCausesService) Create(ctx context.Context, input causes.CreateCauseInput) (*causes.CauseDTO, error) {
	s.lastCreate = input
	return s.cause, s.err
}

func (s *stubCausesService) Get(ctx context.Context, id uuid.UUID) (*causes.CauseDTO, error) {
	return s.cause, s.err
}

func (s *stubCausesService) List(ctx context.Context) ([]causes.CauseDTO, error) {
	return s.list, s.err
}

func (s *stubCausesService) Update(ctx context.Context, id uuid.UUID, input causes.UpdateCauseInput) (*causes.CauseDTO, error) {
	s.lastUpdate = input
	return s.cause, s.err
}

func (s *stubCausesService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func TestCausesListPublic(t *testing.T) {
	svc := &stubCausesService{list: []causes.CauseDTO{{ID: uuid.New(), Name: "Clean Water"}}}
	handler := CausesList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/causes", nil)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []causes.CauseDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Clean Water" {
		t.Fatalf("unexpected payload: %+v", envelope.Data)
	}
}

func TestCausesGetRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/causes/{causeId}", CausesGet(&stubCausesService{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/causes/not-a-uuid", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCausesCreateRecordsActor(t *testing.T) {
	actorID := uuid.New()
	svc := &stubCausesService{cause: &causes.CauseDTO{ID: uuid.New(), Name: "Disaster Relief"}}
	handler := CausesCreate(svc, nil)

	body := []byte(`{"name":"Disaster Relief","description":"Emergency aid"}`)
	req := authedRequest(http.MethodPost, "/api/admin/v1/causes", body, actorID, "admin")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.lastCreate.CreatedBy == nil || *svc.lastCreate.CreatedBy != actorID {
		t.Fatalf("expected creator %s, got %v", actorID, svc.lastCreate.CreatedBy)
	}
}

func TestCausesCreateRejectsBadImageURL(t *testing.T) {
	handler := CausesCreate(&stubCausesService{}, nil)

	body := []byte(`{"name":"Disaster Relief","image_url":"not a url"}`)
	req := authedRequest(http.MethodPost, "/api/admin/v1/causes", body, uuid.New(), "admin")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCausesUpdatePartial(t *testing.T) {
	causeID := uuid.New()
	svc := &stubCausesService{cause: &causes.CauseDTO{ID: causeID, Name: "Renamed"}}

	r := chi.NewRouter()
	r.Put("/api/admin/v1/causes/{causeId}", CausesUpdate(svc, nil))

	body := []byte(`{"name":"Renamed"}`)
	req := authedRequest(http.MethodPut, "/api/admin/v1/causes/"+causeID.String(), body, uuid.New(), "admin")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.lastUpdate.Name == nil || *svc.lastUpdate.Name != "Renamed" {
		t.Fatalf("expected name update, got %+v", svc.lastUpdate)
	}
	if svc.lastUpdate.Description != nil {
		t.Fatalf("description should stay unchanged, got %v", svc.lastUpdate.Description)
	}
}

func TestCausesDelete(t *testing.T) {
	causeID := uuid.New()
	svc := &stubCausesService{}

	r := chi.NewRouter()
	r.Delete("/api/admin/v1/causes/{causeId}", CausesDelete(svc, nil))

	req := authedRequest(http.MethodDelete, "/api/admin/v1/causes/"+causeID.String(), nil, uuid.New(), "admin")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if svc.deletedID != causeID {
		t.Fatalf("expected delete of %s, got %s", causeID, svc.deletedID)
	}
}
