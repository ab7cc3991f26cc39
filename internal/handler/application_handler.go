package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/jobtrack/internal/candidate"
	"github.com/hitoshi/jobtrack/internal/middleware"
	"github.com/hitoshi/jobtrack/internal/model"
)

// appliedAtLayout は応募日のJSONフォーマット（日付のみ）。
const appliedAtLayout = "2006-01-02"

// ApplicationServiceInterface は応募記録ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	CreateApplication(ctx context.Context, userID string, input candidate.ApplicationInput) (*model.Application, error)
	GetApplication(ctx context.Context, userID, id string) (*model.Application, error)
	ListApplications(ctx context.Context, userID string) ([]*model.Application, error)
	UpdateApplication(ctx context.Context, userID, id string, input candidate.ApplicationInput) (*model.Application, error)
	DeleteApplication(ctx context.Context, userID, id string) error
}

// ApplicationHandler は応募記録関連のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type applicationRequest struct {
	Company   string `json:"company"`
	Position  string `json:"position"`
	Status    string `json:"status"`
	AppliedAt string `json:"applied_at"` // YYYY-MM-DD形式（省略可）
	Notes     string `json:"notes"`
}

type applicationResponse struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Status    string    `json:"status"`
	AppliedAt string    `json:"applied_at,omitempty"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// toInput はリクエストをサービス入力に変換する。応募日の形式不正はエラーを返す。
func (req *applicationRequest) toInput() (candidate.ApplicationInput, error) {
	input := candidate.ApplicationInput{
		Company:  req.Company,
		Position: req.Position,
		Status:   model.ApplicationStatus(req.Status),
		Notes:    req.Notes,
	}

	if req.AppliedAt != "" {
		t, err := time.Parse(appliedAtLayout, req.AppliedAt)
		if err != nil {
			return input, model.NewValidationError("応募日はYYYY-MM-DD形式で指定してください")
		}
		input.AppliedAt = &t
	}

	return input, nil
}

// CreateApplication は応募記録の作成を処理する。
// POST /api/applications
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	input, err := req.toInput()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	app, err := h.service.CreateApplication(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// GetApplication は応募記録の詳細を取得する。
// GET /api/applications/:id
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	app, err := h.service.GetApplication(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// ListApplications は応募記録一覧を取得する。
// GET /api/applications
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	apps, err := h.service.ListApplications(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		responses = append(responses, toApplicationResponse(app))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"applications": responses,
	})
}

// UpdateApplication は応募記録の更新を処理する。
// PUT /api/applications/:id
func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	input, err := req.toInput()
	if err != nil {
		handleServiceError(w, err)
		return
	}

	app, err := h.service.UpdateApplication(r.Context(), userID, chi.URLParam(r, "id"), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toApplicationResponse(app))
}

// DeleteApplication は応募記録の削除を処理する。
// DELETE /api/applications/:id
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.DeleteApplication(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toApplicationResponse はmodel.ApplicationからAPIレスポンスに変換する。
func toApplicationResponse(app *model.Application) applicationResponse {
	resp := applicationResponse{
		ID:        app.ID,
		Company:   app.Company,
		Position:  app.Position,
		Status:    string(app.Status),
		Notes:     app.Notes,
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
	if app.AppliedAt != nil {
		resp.AppliedAt = app.AppliedAt.Format(appliedAtLayout)
	}
	return resp
}
