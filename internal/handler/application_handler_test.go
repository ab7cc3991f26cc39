package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/candidate"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

type mockApplicationService struct {
	createFn func(ctx context.Context, userID string, input candidate.ApplicationInput) (*model.Application, error)
	getFn    func(ctx context.Context, userID, id string) (*model.Application, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Application, error)
	updateFn func(ctx context.Context, userID, id string, input candidate.ApplicationInput) (*model.Application, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (m *mockApplicationService) CreateApplication(ctx context.Context, userID string, input candidate.ApplicationInput) (*model.Application, error) {
	return m.createFn(ctx, userID, input)
}
func (m *mockApplicationService) GetApplication(ctx context.Context, userID, id string) (*model.Application, error) {
	return m.getFn(ctx, userID, id)
}
func (m *mockApplicationService) ListApplications(ctx context.Context, userID string) ([]*model.Application, error) {
	return m.listFn(ctx, userID)
}
func (m *mockApplicationService) UpdateApplication(ctx context.Context, userID, id string, input candidate.ApplicationInput) (*model.Application, error) {
	return m.updateFn(ctx, userID, id, input)
}
func (m *mockApplicationService) DeleteApplication(ctx context.Context, userID, id string) error {
	return m.deleteFn(ctx, userID, id)
}

var _ ApplicationServiceInterface = (*mockApplicationService)(nil)

// authedRequest は認証済みユーザーのコンテキストとchiのURLパラメータを
// 設定したリクエストを生成するテストヘルパー。
func authedRequest(method, target, userID string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	ctx := req.Context()
	if userID != "" {
		ctx = middleware.ContextWithUserID(ctx, userID)
	}

	if len(params) > 0 {
		routeCtx := chi.NewRouteContext()
		for key, value := range params {
			routeCtx.URLParams.Add(key, value)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}

	return req.WithContext(ctx)
}

// TestApplicationHandler_Create は応募記録の作成で201が返ることを検証する。
func TestApplicationHandler_Create(t *testing.T) {
	now := time.Now()
	svc := &mockApplicationService{
		createFn: func(_ context.Context, userID string, input candidate.ApplicationInput) (*model.Application, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return &model.Application{
				ID:        "app-1",
				UserID:    userID,
				Company:   input.Company,
				Position:  input.Position,
				Status:    model.StatusApplied,
				Notes:     input.Notes,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := authedRequest(http.MethodPost, "/api/applications", "user-1",
		strings.NewReader(`{"company":"Acme","position":"Backend Engineer"}`), nil)
	rec := httptest.NewRecorder()
	h.CreateApplication(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var body applicationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.ID != "app-1" || body.Company != "Acme" || body.Status != "applied" {
		t.Errorf("body = %+v", body)
	}
}

// TestApplicationHandler_Create_InvalidDate は応募日の形式不正で422が返ることを検証する。
func TestApplicationHandler_Create_InvalidDate(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	req := authedRequest(http.MethodPost, "/api/applications", "user-1",
		strings.NewReader(`{"company":"Acme","position":"Engineer","applied_at":"2026/01/15"}`), nil)
	rec := httptest.NewRecorder()
	h.CreateApplication(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeValidationError {
		t.Errorf("code = %q, want VALIDATION_ERROR", body.Code)
	}
}

// TestApplicationHandler_Create_Unauthenticated はコンテキストに
// ユーザーIDがない場合に401が返ることを検証する。
func TestApplicationHandler_Create_Unauthenticated(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	req := authedRequest(http.MethodPost, "/api/applications", "",
		strings.NewReader(`{"company":"Acme"}`), nil)
	rec := httptest.NewRecorder()
	h.CreateApplication(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestApplicationHandler_Get_NotFound は存在しない応募記録で404が返ることを検証する。
// 他ユーザー所有の記録も同じレスポンスになる。
func TestApplicationHandler_Get_NotFound(t *testing.T) {
	svc := &mockApplicationService{
		getFn: func(_ context.Context, _, id string) (*model.Application, error) {
			return nil, model.NewApplicationNotFoundError(id)
		},
	}
	h := NewApplicationHandler(svc)

	req := authedRequest(http.MethodGet, "/api/applications/app-999", "user-1", nil,
		map[string]string{"id": "app-999"})
	rec := httptest.NewRecorder()
	h.GetApplication(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeApplicationNotFound {
		t.Errorf("code = %q, want APPLICATION_NOT_FOUND", body.Code)
	}
}

// TestApplicationHandler_List は一覧がapplicationsキーで返ることを検証する。
func TestApplicationHandler_List(t *testing.T) {
	appliedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	svc := &mockApplicationService{
		listFn: func(_ context.Context, _ string) ([]*model.Application, error) {
			return []*model.Application{
				{ID: "app-1", Company: "Acme", Status: model.StatusInterview, AppliedAt: &appliedAt},
				{ID: "app-2", Company: "Globex", Status: model.StatusApplied},
			}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := authedRequest(http.MethodGet, "/api/applications", "user-1", nil, nil)
	rec := httptest.NewRecorder()
	h.ListApplications(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Applications []applicationResponse `json:"applications"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Applications) != 2 {
		t.Fatalf("len = %d, want 2", len(body.Applications))
	}
	if body.Applications[0].AppliedAt != "2026-01-15" {
		t.Errorf("applied_at = %q, want 2026-01-15", body.Applications[0].AppliedAt)
	}
	if body.Applications[1].AppliedAt != "" {
		t.Errorf("applied_at = %q, want empty for nil date", body.Applications[1].AppliedAt)
	}
}

// TestApplicationHandler_Update は更新後の内容が返ることを検証する。
func TestApplicationHandler_Update(t *testing.T) {
	svc := &mockApplicationService{
		updateFn: func(_ context.Context, _, id string, input candidate.ApplicationInput) (*model.Application, error) {
			return &model.Application{ID: id, Company: input.Company, Status: input.Status}, nil
		},
	}
	h := NewApplicationHandler(svc)

	req := authedRequest(http.MethodPut, "/api/applications/app-1", "user-1",
		strings.NewReader(`{"company":"Acme","position":"Engineer","status":"offer"}`),
		map[string]string{"id": "app-1"})
	rec := httptest.NewRecorder()
	h.UpdateApplication(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body applicationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "offer" {
		t.Errorf("status = %q, want offer", body.Status)
	}
}

// TestApplicationHandler_Delete は削除成功で204が返ることを検証する。
func TestApplicationHandler_Delete(t *testing.T) {
	var deletedID string
	svc := &mockApplicationService{
		deleteFn: func(_ context.Context, _, id string) error {
			deletedID = id
			return nil
		},
	}
	h := NewApplicationHandler(svc)

	req := authedRequest(http.MethodDelete, "/api/applications/app-1", "user-1", nil,
		map[string]string{"id": "app-1"})
	rec := httptest.NewRecorder()
	h.DeleteApplication(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if deletedID != "app-1" {
		t.Errorf("deleted id = %q, want app-1", deletedID)
	}
}
