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

// SkillServiceInterface はスキルハンドラーが必要とするサービスインターフェース。
type SkillServiceInterface interface {
	CreateSkill(ctx context.Context, userID string, input candidate.SkillInput) (*model.Skill, error)
	ListSkills(ctx context.Context, userID string) ([]*model.Skill, error)
	DeleteSkill(ctx context.Context, userID, id string) error
}

// SkillHandler はスキル関連のHTTPハンドラー。
type SkillHandler struct {
	service SkillServiceInterface
}

// NewSkillHandler はSkillHandlerを生成する。
func NewSkillHandler(service SkillServiceInterface) *SkillHandler {
	return &SkillHandler{service: service}
}

type skillRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Years int    `json:"years"`
}

type skillResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Years int    `json:"years"`
}

// CreateSkill はスキルの登録を処理する。
// POST /api/skills
func (h *SkillHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req skillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	skill, err := h.service.CreateSkill(r.Context(), userID, candidate.SkillInput{
		Name:  req.Name,
		Level: req.Level,
		Years: req.Years,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toSkillResponse(skill))
}

// ListSkills はスキル一覧を取得する。
// GET /api/skills
func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	skills, err := h.service.ListSkills(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]skillResponse, 0, len(skills))
	for _, skill := range skills {
		responses = append(responses, toSkillResponse(skill))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"skills": responses,
	})
}

// DeleteSkill はスキルの削除を処理する。
// DELETE /api/skills/:id
func (h *SkillHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.DeleteSkill(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toSkillResponse はmodel.SkillからAPIレスポンスに変換する。
func toSkillResponse(skill *model.Skill) skillResponse {
	return skillResponse{
		ID:    skill.ID,
		Name:  skill.Name,
		Level: skill.Level,
		Years: skill.Years,
	}
}
