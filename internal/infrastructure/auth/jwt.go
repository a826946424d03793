package authinfra

import (
	"errors"
	"fmt"
	"time"

	"token-auth/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// JWTIssuer 實作 TokenService，以 HS256 簽發 access/refresh token。
// access 與 refresh 使用不同 secret，兩者不可互換。
type JWTIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// Options 為 JWTIssuer 的設定。
type Options struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	// Now 可替換時間來源，nil 時使用 time.Now。
	Now func() time.Time
}

// NewJWTIssuer 建立 JWT 簽發器，TTL 為 0 時套用預設值（15m / 7d）。
func NewJWTIssuer(opts Options) (*JWTIssuer, error) {
	if opts.AccessSecret == "" || opts.RefreshSecret == "" {
		return nil, errors.New("jwt secrets are required")
	}
	if opts.AccessSecret == opts.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if opts.AccessTTL == 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL == 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &JWTIssuer{
		accessSecret:  []byte(opts.AccessSecret),
		refreshSecret: []byte(opts.RefreshSecret),
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		issuer:        opts.Issuer,
		now:           opts.Now,
	}, nil
}

// AccessTTL 回傳 access token 有效時間。
func (j *JWTIssuer) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL 回傳 refresh token 有效時間。
func (j *JWTIssuer) RefreshTTL() time.Duration { return j.refreshTTL }

// Claims 定義 access token 的 payload，欄位名稱沿用前端使用的 uid/email。
type Claims struct {
	UserID      string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims 只帶 uid。
type RefreshClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// IssueAccess 簽發 access token。
func (j *JWTIssuer) IssueAccess(user auth.User) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.accessTTL)
	claims := Claims{
		UserID:           user.ID,
		Email:            user.Email,
		DisplayName:      user.DisplayName,
		PhotoURL:         user.PhotoURL,
		RegisteredClaims: j.registered(user.ID, now, exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh 簽發 refresh token。
func (j *JWTIssuer) IssueRefresh(user auth.User) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.refreshTTL)
	claims := RefreshClaims{
		UserID:           user.ID,
		RegisteredClaims: j.registered(user.ID, now, exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccess 驗證並解析 access token。
func (j *JWTIssuer) ParseAccess(token string) (auth.Claims, error) {
	var claims Claims
	if err := j.parse(token, &claims, j.accessSecret); err != nil {
		return auth.Claims{}, err
	}
	out := toDomain(claims.UserID, claims.RegisteredClaims)
	out.Email = claims.Email
	out.DisplayName = claims.DisplayName
	out.PhotoURL = claims.PhotoURL
	return out, nil
}

// ParseRefresh 驗證並解析 refresh token。
func (j *JWTIssuer) ParseRefresh(token string) (auth.Claims, error) {
	var claims RefreshClaims
	if err := j.parse(token, &claims, j.refreshSecret); err != nil {
		return auth.Claims{}, err
	}
	return toDomain(claims.UserID, claims.RegisteredClaims), nil
}

func (j *JWTIssuer) registered(userID string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (j *JWTIssuer) parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return auth.ErrTokenRequired
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", auth.ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return auth.ErrInvalidToken
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return fmt.Errorf("%w: missing subject", auth.ErrInvalidToken)
	}
	return nil
}

func toDomain(userID string, rc jwt.RegisteredClaims) auth.Claims {
	out := auth.Claims{
		ID:     rc.ID,
		UserID: userID,
	}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out
}
