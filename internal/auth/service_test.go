package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/jobtrack/internal/model"
	"github.com/hitoshi/jobtrack/internal/password"
	"github.com/hitoshi/jobtrack/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	createFn                func(ctx context.Context, user *model.User) error
	findByIDFn              func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn           func(ctx context.Context, email string) (*model.User, error)
	findByValidResetTokenFn func(ctx context.Context, token string, now time.Time) (*model.User, error)
	updateResetTokenFn      func(ctx context.Context, userID, token string, expiry time.Time) error
	consumeResetTokenFn     func(ctx context.Context, token, newHash string, now time.Time) (int64, error)
	updatePasswordFn        func(ctx context.Context, userID, newHash string) error
	deleteByIDFn            func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByValidResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	if m.findByValidResetTokenFn != nil {
		return m.findByValidResetTokenFn(ctx, token, now)
	}
	return nil, nil
}
func (m *mockUserRepo) UpdateResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	if m.updateResetTokenFn != nil {
		return m.updateResetTokenFn(ctx, userID, token, expiry)
	}
	return nil
}
func (m *mockUserRepo) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (int64, error) {
	if m.consumeResetTokenFn != nil {
		return m.consumeResetTokenFn(ctx, token, newHash, now)
	}
	return 1, nil
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, newHash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, newHash)
	}
	return nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	createFn         func(ctx context.Context, session *model.Session) error
	findByIDFn       func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn     func(ctx context.Context, id string) error
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

// fakeHasher はbcryptを使わない軽量のHasher実装。
// "hashed:" プレフィックスの付与で照合をシミュレートする。
type fakeHasher struct {
	verifyCalls []string // Verifyに渡されたハッシュの記録
}

func (h *fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}
func (h *fakeHasher) Verify(plaintext, hash string) bool {
	h.verifyCalls = append(h.verifyCalls, hash)
	return hash == "hashed:"+plaintext
}

type mockMailer struct {
	sendFn func(ctx context.Context, toEmail, token string) error
	sent   []string // 送信先の記録
	tokens []string // 送信されたトークンの記録
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	m.sent = append(m.sent, toEmail)
	m.tokens = append(m.tokens, token)
	if m.sendFn != nil {
		return m.sendFn(ctx, toEmail, token)
	}
	return nil
}

// compile-time interface checks
var (
	_ repository.UserRepository    = (*mockUserRepo)(nil)
	_ repository.SessionRepository = (*mockSessionRepo)(nil)
	_ password.Hasher              = (*fakeHasher)(nil)
	_ Mailer                       = (*mockMailer)(nil)
)

func newTestService(userRepo *mockUserRepo, sessionRepo *mockSessionRepo, hasher *fakeHasher) *Service {
	return NewService(userRepo, sessionRepo, hasher, nil, nil, ServiceConfig{
		SessionMaxAge: 86400,
		ResetTokenTTL: 1 * time.Hour,
	})
}

// --- Register ---

// TestService_Register は正常な登録でハッシュ化されたパスワードのみが
// 永続化されることを検証する。
func TestService_Register(t *testing.T) {
	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &fakeHasher{})

	user, err := svc.Register(context.Background(), "  Alice@Example.COM ", "Password1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized %q", user.Email, "alice@example.com")
	}
	if user.PasswordHash != "hashed:Password1" {
		t.Errorf("PasswordHash = %q, want hashed value", user.PasswordHash)
	}
	if user.PasswordHash == "Password1" {
		t.Error("plaintext password must never be persisted")
	}
	if user.ID == "" {
		t.Error("expected generated user ID")
	}
}

// TestService_Register_WeakPassword は強度不足のパスワードが
// 永続化前に拒否されることを検証する。
func TestService_Register_WeakPassword(t *testing.T) {
	createCalled := false
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &fakeHasher{})

	_, err := svc.Register(context.Background(), "alice@example.com", "short")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if createCalled {
		t.Error("Create must not be called for invalid password")
	}
}

// TestService_Register_DuplicateEmail は重複メールアドレスで
// DuplicateEmailエラーが透過することを検証する。
func TestService_Register_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return model.NewDuplicateEmailError()
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &fakeHasher{})

	_, err := svc.Register(context.Background(), "alice@example.com", "Password1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateEmail {
		t.Fatalf("expected DuplicateEmail, got %v", err)
	}
}

// --- Login ---

// TestService_Login は正しい資格情報でセッションが発行されることを検証する。
func TestService_Login(t *testing.T) {
	var savedSession *model.Session
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: "hashed:Password1"}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createFn: func(_ context.Context, session *model.Session) error {
			savedSession = session
			return nil
		},
	}
	svc := newTestService(userRepo, sessionRepo, &fakeHasher{})

	user, session, err := svc.Login(context.Background(), "alice@example.com", "Password1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want user-1", user.ID)
	}
	if session == nil || savedSession == nil {
		t.Fatal("expected session to be created and persisted")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(session.ID))
	}
	if session.UserID != "user-1" {
		t.Errorf("session.UserID = %q, want user-1", session.UserID)
	}

	wantExpiry := time.Now().Add(86400 * time.Second)
	if diff := session.ExpiresAt.Sub(wantExpiry); diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("session expiry = %v, want about %v", session.ExpiresAt, wantExpiry)
	}
}

// TestService_Login_IndistinguishableFailures はメールアドレス不明と
// パスワード不一致が同一のエラーを返すことを検証する。
func TestService_Login_IndistinguishableFailures(t *testing.T) {
	unknownRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := newTestService(unknownRepo, &mockSessionRepo{}, &fakeHasher{})
	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "Password1")

	wrongPassRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: "hashed:Other1234"}, nil
		},
	}
	svc = newTestService(wrongPassRepo, &mockSessionRepo{}, &fakeHasher{})
	_, _, errWrongPass := svc.Login(context.Background(), "alice@example.com", "Password1")

	var apiErr1, apiErr2 *model.APIError
	if !errors.As(errUnknown, &apiErr1) || !errors.As(errWrongPass, &apiErr2) {
		t.Fatalf("expected APIError for both failures, got %v / %v", errUnknown, errWrongPass)
	}
	if apiErr1.Code != model.ErrCodeInvalidCredentials || apiErr2.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("codes = %q / %q, want both INVALID_CREDENTIALS", apiErr1.Code, apiErr2.Code)
	}
	if apiErr1.Message != apiErr2.Message {
		t.Error("failure messages must be identical to prevent account enumeration")
	}
}

// TestService_Login_UnknownUserStillVerifies はユーザー不明の場合でも
// ダミーハッシュとの照合が実行されることを検証する（応答時間の均等化）。
func TestService_Login_UnknownUserStillVerifies(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, nil
		},
	}
	hasher := &fakeHasher{}
	svc := newTestService(userRepo, &mockSessionRepo{}, hasher)

	svc.Login(context.Background(), "nobody@example.com", "Password1")

	if len(hasher.verifyCalls) != 1 {
		t.Fatalf("Verify called %d times, want 1", len(hasher.verifyCalls))
	}
	if hasher.verifyCalls[0] != decoyPasswordHash {
		t.Error("expected decoy hash to be verified for unknown user")
	}
}

// --- Logout ---

// TestService_Logout_Idempotent は空のセッションIDでもエラーにならないことを検証する。
func TestService_Logout_Idempotent(t *testing.T) {
	deleteCalled := false
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(_ context.Context, _ string) error {
			deleteCalled = true
			return nil
		},
	}
	svc := newTestService(&mockUserRepo{}, sessionRepo, &fakeHasher{})

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("Logout with empty ID returned error: %v", err)
	}
	if deleteCalled {
		t.Error("DeleteByID must not be called for empty session ID")
	}

	if err := svc.Logout(context.Background(), "some-session"); err != nil {
		t.Errorf("Logout returned error: %v", err)
	}
	if !deleteCalled {
		t.Error("expected DeleteByID to be called")
	}
}

// --- GetCurrentUser ---

// TestService_GetCurrentUser_InvalidSession は不明・期限切れセッションで
// Unauthorizedが返ることを検証する。
func TestService_GetCurrentUser_InvalidSession(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, nil // 期限切れはリポジトリがnilを返す
		},
	}
	svc := newTestService(&mockUserRepo{}, sessionRepo, &fakeHasher{})

	_, err := svc.GetCurrentUser(context.Background(), "expired-session")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

// TestService_GetCurrentUser は有効なセッションでユーザーが取得できることを検証する。
func TestService_GetCurrentUser(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "alice@example.com"}, nil
		},
	}
	svc := newTestService(userRepo, sessionRepo, &fakeHasher{})

	user, err := svc.GetCurrentUser(context.Background(), "valid-session")
	if err != nil {
		t.Fatalf("GetCurrentUser returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want user-1", user.ID)
	}
}

// --- ChangePassword ---

// TestService_ChangePassword_WrongCurrent は現在のパスワード不一致で
// InvalidCredentialsが返り、更新されないことを検証する。
func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	updateCalled := false
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: "hashed:Correct123"}, nil
		},
		updatePasswordFn: func(_ context.Context, _, _ string) error {
			updateCalled = true
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &fakeHasher{})

	err := svc.ChangePassword(context.Background(), "user-1", "Wrong12345", "NewPassword1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Fatalf("expected InvalidCredentials, got %v", err)
	}
	if updateCalled {
		t.Error("UpdatePassword must not be called when current password is wrong")
	}
}

// TestService_ChangePassword は正しい現在パスワードで変更が成功することを検証する。
func TestService_ChangePassword(t *testing.T) {
	var updatedHash string
	userRepo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: "hashed:Current123"}, nil
		},
		updatePasswordFn: func(_ context.Context, _, newHash string) error {
			updatedHash = newHash
			return nil
		},
	}
	svc := newTestService(userRepo, &mockSessionRepo{}, &fakeHasher{})

	if err := svc.ChangePassword(context.Background(), "user-1", "Current123", "NewPassword1"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if updatedHash != "hashed:NewPassword1" {
		t.Errorf("updated hash = %q, want hashed new password", updatedHash)
	}
}
