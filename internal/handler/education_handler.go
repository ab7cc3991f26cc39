package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/candidate"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// EducationServiceInterface は学歴ハンドラーが必要とするサービスインターフェース。
type EducationServiceInterface interface {
	CreateEducation(ctx context.Context, userID string, input candidate.EducationInput) (*model.Education, error)
	GetEducation(ctx context.Context, userID, id string) (*model.Education, error)
	ListEducations(ctx context.Context, userID string) ([]*model.Education, error)
	UpdateEducation(ctx context.Context, userID, id string, input candidate.EducationInput) (*model.Education, error)
	DeleteEducation(ctx context.Context, userID, id string) error
}

// EducationHandler は学歴関連のHTTPハンドラー。
type EducationHandler struct {
	service EducationServiceInterface
}

// NewEducationHandler はEducationHandlerを生成する。
func NewEducationHandler(service EducationServiceInterface) *EducationHandler {
	return &EducationHandler{service: service}
}

type educationRequest struct {
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

type educationResponse struct {
	ID        string `json:"id"`
	School    string `json:"school"`
	Degree    string `json:"degree"`
	Field     string `json:"field"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

func (req *educationRequest) toInput() candidate.EducationInput {
	return candidate.EducationInput{
		School:    req.School,
		Degree:    req.Degree,
		Field:     req.Field,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
	}
}

// CreateEducation は学歴記録の作成を処理する。
// POST /api/educations
func (h *EducationHandler) CreateEducation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req educationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	edu, err := h.service.CreateEducation(r.Context(), userID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toEducationResponse(edu))
}

// ListEducations は学歴一覧を取得する。
// GET /api/educations
func (h *EducationHandler) ListEducations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	edus, err := h.service.ListEducations(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]educationResponse, 0, len(edus))
	for _, edu := range edus {
		responses = append(responses, toEducationResponse(edu))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"educations": responses,
	})
}

// UpdateEducation は学歴記録の更新を処理する。
// PUT /api/educations/:id
func (h *EducationHandler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req educationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	edu, err := h.service.UpdateEducation(r.Context(), userID, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toEducationResponse(edu))
}

// DeleteEducation は学歴記録の削除を処理する。
// DELETE /api/educations/:id
func (h *EducationHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.DeleteEducation(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toEducationResponse はmodel.EducationからAPIレスポンスに変換する。
func toEducationResponse(edu *model.Education) educationResponse {
	return educationResponse{
		ID:        edu.ID,
		School:    edu.School,
		Degree:    edu.Degree,
		Field:     edu.Field,
		StartYear: edu.StartYear,
		EndYear:   edu.EndYear,
	}
}
