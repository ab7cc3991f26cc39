// Package candidate は求職者のプロフィール・応募記録・学歴・スキルの
// 管理機能を提供する。すべての操作は認証済みユーザー自身のデータに限定され、
// 他ユーザーのデータへのアクセスは「存在しない」として扱われる
// （403ではなく404を返し、リソースの存在自体を秘匿する）。
package candidate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/repository"
	"github.com/hitoshi/jobtrack/internal/security"
)

const (
	maxNameLength    = 200
	maxSummaryLength = 10000
	maxNotesLength   = 10000
	maxSkillLevel    = 5
)

// Service は求職者データに関するビジネスロジックを提供する。
type Service struct {
	profileRepo repository.ProfileRepository
	appRepo     repository.ApplicationRepository
	eduRepo     repository.EducationRepository
	skillRepo   repository.SkillRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	profileRepo repository.ProfileRepository,
	appRepo repository.ApplicationRepository,
	eduRepo repository.EducationRepository,
	skillRepo repository.SkillRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		profileRepo: profileRepo,
		appRepo:     appRepo,
		eduRepo:     eduRepo,
		skillRepo:   skillRepo,
		sanitizer:   sanitizer,
	}
}

// GetProfile は自分のプロフィールを取得する。
// 未作成の場合はProfileNotFoundを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return profile, nil
}

// ProfileInput はプロフィール更新の入力。
type ProfileInput struct {
	FullName string
	Headline string
	Summary  string
	Location string
	Phone    string
	Website  string
}

// UpsertProfile はプロフィールを作成または更新する。
// SummaryはHTMLサニタイズを通した上で保存される。
func (s *Service) UpsertProfile(ctx context.Context, userID string, input ProfileInput) (*model.Profile, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, model.NewValidationError("氏名は必須です")
	}
	if len(fullName) > maxNameLength {
		return nil, model.NewValidationError("氏名が長すぎます")
	}
	if len(input.Summary) > maxSummaryLength {
		return nil, model.NewValidationError("自己紹介が長すぎます")
	}

	profile := &model.Profile{
		UserID:    userID,
		FullName:  fullName,
		Headline:  strings.TrimSpace(input.Headline),
		Summary:   s.sanitizer.Sanitize(input.Summary),
		Location:  strings.TrimSpace(input.Location),
		Phone:     strings.TrimSpace(input.Phone),
		Website:   strings.TrimSpace(input.Website),
		UpdatedAt: time.Now(),
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return profile, nil
}

// ApplicationInput は応募記録の作成・更新の入力。
type ApplicationInput struct {
	Company   string
	Position  string
	Status    model.ApplicationStatus
	AppliedAt *time.Time
	Notes     string
}

// validateApplicationInput は応募記録の入力値を検証し、正規化した値を返す。
func (s *Service) validateApplicationInput(input ApplicationInput) (ApplicationInput, error) {
	input.Company = strings.TrimSpace(input.Company)
	input.Position = strings.TrimSpace(input.Position)

	if input.Company == "" {
		return input, model.NewValidationError("会社名は必須です")
	}
	if len(input.Company) > maxNameLength {
		return input, model.NewValidationError("会社名が長すぎます")
	}
	if input.Position == "" {
		return input, model.NewValidationError("職種は必須です")
	}
	if len(input.Position) > maxNameLength {
		return input, model.NewValidationError("職種が長すぎます")
	}
	if input.Status == "" {
		input.Status = model.StatusApplied
	}
	if !model.ValidApplicationStatus(input.Status) {
		return input, model.NewValidationError(fmt.Sprintf("不正なステータスです: %s", input.Status))
	}
	if len(input.Notes) > maxNotesLength {
		return input, model.NewValidationError("メモが長すぎます")
	}

	input.Notes = s.sanitizer.Sanitize(input.Notes)
	return input, nil
}

// CreateApplication は応募記録を作成する。
func (s *Service) CreateApplication(ctx context.Context, userID string, input ApplicationInput) (*model.Application, error) {
	input, err := s.validateApplicationInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	app := &model.Application{
		ID:        uuid.New().String(),
		UserID:    userID,
		Company:   input.Company,
		Position:  input.Position,
		Status:    input.Status,
		AppliedAt: input.AppliedAt,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return app, nil
}

// GetApplication は自分の応募記録を取得する。
// 不明なID・他ユーザー所有のいずれもApplicationNotFoundを返す。
func (s *Service) GetApplication(ctx context.Context, userID, id string) (*model.Application, error) {
	app, err := s.appRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(id)
	}
	return app, nil
}

// ListApplications は自分の応募記録一覧を返す。
func (s *Service) ListApplications(ctx context.Context, userID string) ([]*model.Application, error) {
	apps, err := s.appRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateApplication は自分の応募記録を更新する。
// 更新対象が存在しない（他ユーザー所有を含む）場合はApplicationNotFoundを返す。
func (s *Service) UpdateApplication(ctx context.Context, userID, id string, input ApplicationInput) (*model.Application, error) {
	input, err := s.validateApplicationInput(input)
	if err != nil {
		return nil, err
	}

	app := &model.Application{
		ID:        id,
		UserID:    userID,
		Company:   input.Company,
		Position:  input.Position,
		Status:    input.Status,
		AppliedAt: input.AppliedAt,
		Notes:     input.Notes,
		UpdatedAt: time.Now(),
	}

	affected, err := s.appRepo.Update(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if affected == 0 {
		return nil, model.NewApplicationNotFoundError(id)
	}

	return s.GetApplication(ctx, userID, id)
}

// DeleteApplication は自分の応募記録を削除する。
func (s *Service) DeleteApplication(ctx context.Context, userID, id string) error {
	affected, err := s.appRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if affected == 0 {
		return model.NewApplicationNotFoundError(id)
	}
	return nil
}

// EducationInput は学歴記録の作成・更新の入力。
type EducationInput struct {
	School    string
	Degree    string
	Field     string
	StartYear int
	EndYear   int
}

// validateEducationInput は学歴記録の入力値を検証し、正規化した値を返す。
func validateEducationInput(input EducationInput) (EducationInput, error) {
	input.School = strings.TrimSpace(input.School)
	input.Degree = strings.TrimSpace(input.Degree)
	input.Field = strings.TrimSpace(input.Field)

	if input.School == "" {
		return input, model.NewValidationError("学校名は必須です")
	}
	if len(input.School) > maxNameLength {
		return input, model.NewValidationError("学校名が長すぎます")
	}
	if input.StartYear < 0 || input.EndYear < 0 {
		return input, model.NewValidationError("年度は0以上で指定してください")
	}
	if input.EndYear != 0 && input.EndYear < input.StartYear {
		return input, model.NewValidationError("終了年度は開始年度以降で指定してください")
	}

	return input, nil
}

// CreateEducation は学歴記録を作成する。
func (s *Service) CreateEducation(ctx context.Context, userID string, input EducationInput) (*model.Education, error) {
	input, err := validateEducationInput(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	edu := &model.Education{
		ID:        uuid.New().String(),
		UserID:    userID,
		School:    input.School,
		Degree:    input.Degree,
		Field:     input.Field,
		StartYear: input.StartYear,
		EndYear:   input.EndYear,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.eduRepo.Create(ctx, edu); err != nil {
		return nil, fmt.Errorf("failed to create education: %w", err)
	}

	return edu, nil
}

// GetEducation は自分の学歴記録を取得する。
func (s *Service) GetEducation(ctx context.Context, userID, id string) (*model.Education, error) {
	edu, err := s.eduRepo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get education: %w", err)
	}
	if edu == nil {
		return nil, model.NewEducationNotFoundError(id)
	}
	return edu, nil
}

// ListEducations は自分の学歴一覧を返す。
func (s *Service) ListEducations(ctx context.Context, userID string) ([]*model.Education, error) {
	edus, err := s.eduRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list educations: %w", err)
	}
	return edus, nil
}

// UpdateEducation は自分の学歴記録を更新する。
func (s *Service) UpdateEducation(ctx context.Context, userID, id string, input EducationInput) (*model.Education, error) {
	input, err := validateEducationInput(input)
	if err != nil {
		return nil, err
	}

	edu := &model.Education{
		ID:        id,
		UserID:    userID,
		School:    input.School,
		Degree:    input.Degree,
		Field:     input.Field,
		StartYear: input.StartYear,
		EndYear:   input.EndYear,
		UpdatedAt: time.Now(),
	}

	affected, err := s.eduRepo.Update(ctx, edu)
	if err != nil {
		return nil, fmt.Errorf("failed to update education: %w", err)
	}
	if affected == 0 {
		return nil, model.NewEducationNotFoundError(id)
	}

	return s.GetEducation(ctx, userID, id)
}

// DeleteEducation は自分の学歴記録を削除する。
func (s *Service) DeleteEducation(ctx context.Context, userID, id string) error {
	affected, err := s.eduRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete education: %w", err)
	}
	if affected == 0 {
		return model.NewEducationNotFoundError(id)
	}
	return nil
}

// SkillInput はスキル登録の入力。
type SkillInput struct {
	Name  string
	Level int
	Years int
}

// CreateSkill はスキルを登録する。同名スキル（大文字小文字を区別しない）の
// 重複登録はValidationErrorを返す。
func (s *Service) CreateSkill(ctx context.Context, userID string, input SkillInput) (*model.Skill, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("スキル名は必須です")
	}
	if len(name) > maxNameLength {
		return nil, model.NewValidationError("スキル名が長すぎます")
	}
	if input.Level < 0 || input.Level > maxSkillLevel {
		return nil, model.NewValidationError(fmt.Sprintf("レベルは0〜%dで指定してください", maxSkillLevel))
	}
	if input.Years < 0 {
		return nil, model.NewValidationError("経験年数は0以上で指定してください")
	}

	skill := &model.Skill{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Level:     input.Level,
		Years:     input.Years,
		CreatedAt: time.Now(),
	}

	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return nil, err
	}

	return skill, nil
}

// ListSkills は自分のスキル一覧を返す。
func (s *Service) ListSkills(ctx context.Context, userID string) ([]*model.Skill, error) {
	skills, err := s.skillRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return skills, nil
}

// DeleteSkill は自分のスキルを削除する。
func (s *Service) DeleteSkill(ctx context.Context, userID, id string) error {
	affected, err := s.skillRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if affected == 0 {
		return model.NewSkillNotFoundError(id)
	}
	return nil
}
