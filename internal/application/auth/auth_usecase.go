package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"token-auth/internal/domain/auth"

	"github.com/google/uuid"
)

// ErrInvalidInput 代表請求欄位缺漏，HTTP 層對應 400。
var ErrInvalidInput = errors.New("invalid input")

// TokenService 簽發/驗證 access 與 refresh token。
type TokenService interface {
	IssueAccess(user auth.User) (string, time.Time, error)
	IssueRefresh(user auth.User) (string, time.Time, error)
	ParseAccess(token string) (auth.Claims, error)
	ParseRefresh(token string) (auth.Claims, error)
}

// Recorder 收集 token 相關統計。
type Recorder interface {
	TokenIssued(kind string)
	RefreshAttempt(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) TokenIssued(string)    {}
func (nopRecorder) RefreshAttempt(string) {}

// Sessions 負責簽發 token pair 並把 refresh token 寫入 store。
// login、register 與 rotation 共用這一條路徑。
type Sessions struct {
	tokens TokenService
	store  auth.RefreshStore
	rec    Recorder
	now    func() time.Time
}

func NewSessions(tokens TokenService, store auth.RefreshStore, rec Recorder) *Sessions {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Sessions{
		tokens: tokens,
		store:  store,
		rec:    rec,
		now:    time.Now,
	}
}

// Issue 產生 access/refresh token，並覆蓋該使用者先前的 refresh token。
func (s *Sessions) Issue(ctx context.Context, user auth.User) (auth.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.store.Save(ctx, auth.NewRefreshRecord(user, refresh, refreshExp, s.now())); err != nil {
		return auth.TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	s.rec.TokenIssued("access")
	s.rec.TokenIssued("refresh")

	return auth.TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  accessExp,
		RefreshExpiry: refreshExp,
	}, nil
}

// LoginUseCase 接受任何 email 並簽發 token，不驗證密碼。
type LoginUseCase struct {
	users    auth.UserRepository
	sessions *Sessions
	newID    func() string
	now      func() time.Time
}

func NewLoginUseCase(users auth.UserRepository, sessions *Sessions) *LoginUseCase {
	return &LoginUseCase{
		users:    users,
		sessions: sessions,
		newID:    NewUserID,
		now:      time.Now,
	}
}

type LoginInput struct {
	Email string
}

type LoginResult struct {
	User  auth.User
	Token auth.TokenPair
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (LoginResult, error) {
	var out LoginResult
	email := normalizeEmail(input.Email)
	if email == "" {
		return out, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := uc.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		user = auth.User{ID: uc.newID(), Email: email, CreatedAt: uc.now()}
		if err := uc.users.Save(ctx, user); err != nil {
			return out, fmt.Errorf("save user: %w", err)
		}
	case err != nil:
		return out, fmt.Errorf("find user: %w", err)
	}

	token, err := uc.sessions.Issue(ctx, user)
	if err != nil {
		return out, err
	}
	out.User = user
	out.Token = token
	return out, nil
}

// RegisterUseCase 以前端提供的 uid 建立使用者並簽發 token。
type RegisterUseCase struct {
	users    auth.UserRepository
	sessions *Sessions
	now      func() time.Time
}

func NewRegisterUseCase(users auth.UserRepository, sessions *Sessions) *RegisterUseCase {
	return &RegisterUseCase{users: users, sessions: sessions, now: time.Now}
}

type RegisterInput struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (LoginResult, error) {
	var out LoginResult
	user := auth.User{
		ID:          strings.TrimSpace(input.UID),
		Email:       normalizeEmail(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
		CreatedAt:   uc.now(),
	}
	if err := user.Validate(); err != nil {
		return out, fmt.Errorf("%w: user id and email are required", ErrInvalidInput)
	}

	existing, err := uc.users.FindByEmail(ctx, user.Email)
	switch {
	case err == nil && existing.ID != user.ID:
		return out, auth.ErrEmailTaken
	case err != nil && !errors.Is(err, auth.ErrUserNotFound):
		return out, fmt.Errorf("find user: %w", err)
	}
	if err := uc.users.Save(ctx, user); err != nil {
		return out, fmt.Errorf("save user: %w", err)
	}

	token, err := uc.sessions.Issue(ctx, user)
	if err != nil {
		return out, err
	}
	out.User = user
	out.Token = token
	return out, nil
}

// LogoutUseCase 移除使用者的 refresh token。
type LogoutUseCase struct {
	store auth.RefreshStore
}

func NewLogoutUseCase(store auth.RefreshStore) *LogoutUseCase {
	return &LogoutUseCase{store: store}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := uc.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// RefreshUseCase 以有效且未過期的 refresh token 換取新的 access token。
type RefreshUseCase struct {
	sessions *Sessions
	rotate   bool
}

// NewRefreshUseCase 建立 refresh 流程；rotate 為 true 時同時輪替 refresh token。
func NewRefreshUseCase(sessions *Sessions, rotate bool) *RefreshUseCase {
	return &RefreshUseCase{sessions: sessions, rotate: rotate}
}

type RefreshResult struct {
	User  auth.User
	Token auth.TokenPair
	// Rotated 表示 Token.RefreshToken 為新簽發的值。
	Rotated bool
}

func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (RefreshResult, error) {
	var out RefreshResult
	s := uc.sessions
	if strings.TrimSpace(refreshToken) == "" {
		return out, fmt.Errorf("%w: refresh token is required", ErrInvalidInput)
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.rec.RefreshAttempt(refreshOutcome(err))
		return out, err
	}

	rec, err := s.store.Get(ctx, claims.UserID)
	if err != nil {
		s.rec.RefreshAttempt(refreshOutcome(err))
		if errors.Is(err, auth.ErrRefreshNotFound) {
			return out, err
		}
		return out, fmt.Errorf("get refresh token: %w", err)
	}
	if !rec.Matches(refreshToken) {
		s.rec.RefreshAttempt(refreshOutcome(auth.ErrRefreshMismatch))
		return out, auth.ErrRefreshMismatch
	}
	if !rec.Active(s.now()) {
		s.rec.RefreshAttempt(refreshOutcome(auth.ErrTokenExpired))
		return out, auth.ErrTokenExpired
	}

	user := rec.User()
	out.User = user
	if uc.rotate {
		pair, err := s.Issue(ctx, user)
		if err != nil {
			s.rec.RefreshAttempt("error")
			return out, err
		}
		out.Token = pair
		out.Rotated = true
		s.rec.RefreshAttempt("success")
		return out, nil
	}

	access, accessExp, err := s.tokens.IssueAccess(user)
	if err != nil {
		s.rec.RefreshAttempt("error")
		return out, fmt.Errorf("issue access token: %w", err)
	}
	s.rec.TokenIssued("access")
	s.rec.RefreshAttempt("success")
	out.Token = auth.TokenPair{
		AccessToken:   access,
		AccessExpiry:  accessExp,
		RefreshToken:  refreshToken,
		RefreshExpiry: rec.ExpiresAt,
	}
	return out, nil
}

// VerifyUseCase 驗證受保護路由帶入的 access token。
type VerifyUseCase struct {
	tokens TokenService
}

func NewVerifyUseCase(tokens TokenService) *VerifyUseCase {
	return &VerifyUseCase{tokens: tokens}
}

func (uc *VerifyUseCase) Execute(_ context.Context, accessToken string) (auth.Claims, error) {
	if strings.TrimSpace(accessToken) == "" {
		return auth.Claims{}, auth.ErrTokenRequired
	}
	return uc.tokens.ParseAccess(accessToken)
}

// NewUserID 產生 "user-" 前綴的隨機 uid。
func NewUserID() string {
	return "user-" + uuid.NewString()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func refreshOutcome(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, auth.ErrRefreshNotFound):
		return "not_found"
	case errors.Is(err, auth.ErrRefreshMismatch):
		return "mismatch"
	default:
		return "error"
	}
}
