package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/jobtrack/internal/candidate"
	"github.com/hitoshi/jobtrack/internal/model"
)

type mockEducationService struct {
	createFn func(ctx context.Context, userID string, input candidate.EducationInput) (*model.Education, error)
	getFn    func(ctx context.Context, userID, id string) (*model.Education, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Education, error)
	updateFn func(ctx context.Context, userID, id string, input candidate.EducationInput) (*model.Education, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (m *mockEducationService) CreateEducation(ctx context.Context, userID string, input candidate.EducationInput) (*model.Education, error) {
	return m.createFn(ctx, userID, input)
}
func (m *mockEducationService) GetEducation(ctx context.Context, userID, id string) (*model.Education, error) {
	return m.getFn(ctx, userID, id)
}
func (m *mockEducationService) ListEducations(ctx context.Context, userID string) ([]*model.Education, error) {
	return m.listFn(ctx, userID)
}
func (m *mockEducationService) UpdateEducation(ctx context.Context, userID, id string, input candidate.EducationInput) (*model.Education, error) {
	return m.updateFn(ctx, userID, id, input)
}
func (m *mockEducationService) DeleteEducation(ctx context.Context, userID, id string) error {
	return m.deleteFn(ctx, userID, id)
}

var _ EducationServiceInterface = (*mockEducationService)(nil)

// TestEducationHandler_Create は学歴登録で201が返ることを検証する。
func TestEducationHandler_Create(t *testing.T) {
	svc := &mockEducationService{
		createFn: func(_ context.Context, userID string, input candidate.EducationInput) (*model.Education, error) {
			return &model.Education{
				ID:        "edu-1",
				UserID:    userID,
				School:    input.School,
				Degree:    input.Degree,
				StartYear: input.StartYear,
				EndYear:   input.EndYear,
			}, nil
		},
	}
	h := NewEducationHandler(svc)

	req := authedRequest(http.MethodPost, "/api/educations", "user-1",
		strings.NewReader(`{"school":"東京大学","degree":"学士","start_year":2018,"end_year":2022}`), nil)
	rec := httptest.NewRecorder()
	h.CreateEducation(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var body educationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.School != "東京大学" || body.StartYear != 2018 {
		t.Errorf("body = %+v", body)
	}
}

// TestEducationHandler_Create_InvalidYears は卒業年が入学年より前の場合に
// 422が返ることを検証する。
func TestEducationHandler_Create_InvalidYears(t *testing.T) {
	svc := &mockEducationService{
		createFn: func(_ context.Context, _ string, _ candidate.EducationInput) (*model.Education, error) {
			return nil, model.NewValidationError("卒業年は入学年以降を指定してください")
		},
	}
	h := NewEducationHandler(svc)

	req := authedRequest(http.MethodPost, "/api/educations", "user-1",
		strings.NewReader(`{"school":"東京大学","start_year":2022,"end_year":2018}`), nil)
	rec := httptest.NewRecorder()
	h.CreateEducation(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

// TestEducationHandler_Update_NotFound は他ユーザー所有の学歴更新で404が返ることを検証する。
func TestEducationHandler_Update_NotFound(t *testing.T) {
	svc := &mockEducationService{
		updateFn: func(_ context.Context, _, id string, _ candidate.EducationInput) (*model.Education, error) {
			return nil, model.NewEducationNotFoundError(id)
		},
	}
	h := NewEducationHandler(svc)

	req := authedRequest(http.MethodPut, "/api/educations/edu-999", "user-1",
		strings.NewReader(`{"school":"東京大学","start_year":2018}`),
		map[string]string{"id": "edu-999"})
	rec := httptest.NewRecorder()
	h.UpdateEducation(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeEducationNotFound {
		t.Errorf("code = %q, want EDUCATION_NOT_FOUND", body.Code)
	}
}

// TestEducationHandler_Delete は削除成功で204が返ることを検証する。
func TestEducationHandler_Delete(t *testing.T) {
	svc := &mockEducationService{
		deleteFn: func(_ context.Context, _, _ string) error {
			return nil
		},
	}
	h := NewEducationHandler(svc)

	req := authedRequest(http.MethodDelete, "/api/educations/edu-1", "user-1", nil,
		map[string]string{"id": "edu-1"})
	rec := httptest.NewRecorder()
	h.DeleteEducation(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
