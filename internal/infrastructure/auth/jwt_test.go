package authinfra

import (
	"errors"
	"testing"
	"time"

	"token-auth/internal/domain/auth"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *JWTIssuer {
	t.Helper()
	issuer, err := NewJWTIssuer(Options{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "token-auth-test",
	})
	if err != nil {
		t.Fatalf("NewJWTIssuer failed: %v", err)
	}
	return issuer
}

func TestNewJWTIssuer_Validation(t *testing.T) {
	if _, err := NewJWTIssuer(Options{AccessSecret: "a"}); err == nil {
		t.Error("expected error for missing refresh secret")
	}
	if _, err := NewJWTIssuer(Options{AccessSecret: "same", RefreshSecret: "same"}); err == nil {
		t.Error("expected error for identical secrets")
	}
	issuer, err := NewJWTIssuer(Options{AccessSecret: "a", RefreshSecret: "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issuer.AccessTTL() != 15*time.Minute || issuer.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("unexpected default ttl: %v / %v", issuer.AccessTTL(), issuer.RefreshTTL())
	}
}

func TestJWTIssuer_IssueAndParseAccess(t *testing.T) {
	issuer := newTestIssuer(t)
	user := auth.User{ID: "user-1", Email: "a@example.com", DisplayName: "Alice"}

	token, exp, err := issuer.IssueAccess(user)
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if time.Until(exp) > 15*time.Minute || time.Until(exp) < 14*time.Minute {
		t.Errorf("unexpected expiry: %v", exp)
	}

	claims, err := issuer.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" || claims.DisplayName != "Alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected jti")
	}
}

func TestJWTIssuer_RefreshTokensAreUnique(t *testing.T) {
	issuer := newTestIssuer(t)
	user := auth.User{ID: "user-1"}

	a, _, err := issuer.IssueRefresh(user)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := issuer.IssueRefresh(user)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("refresh tokens issued in the same second must differ")
	}

	claims, err := issuer.ParseRefresh(a)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("unexpected uid: %s", claims.UserID)
	}
}

func TestJWTIssuer_SecretsAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t)
	user := auth.User{ID: "user-1"}

	access, _, _ := issuer.IssueAccess(user)
	refresh, _, _ := issuer.IssueRefresh(user)

	if _, err := issuer.ParseRefresh(access); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for access used as refresh, got %v", err)
	}
	if _, err := issuer.ParseAccess(refresh); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for refresh used as access, got %v", err)
	}
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	user := auth.User{ID: "user-1"}

	access, _, _ := issuer.IssueAccess(user)
	refresh, _, _ := issuer.IssueRefresh(user)

	issuer.now = time.Now
	if _, err := issuer.ParseAccess(access); !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired for access, got %v", err)
	}
	if _, err := issuer.ParseRefresh(refresh); !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired for refresh, got %v", err)
	}
}

func TestJWTIssuer_RejectsForeignTokens(t *testing.T) {
	issuer := newTestIssuer(t)

	tests := []struct {
		name  string
		token func() string
		want  error
	}{
		{
			name:  "Empty",
			token: func() string { return "" },
			want:  auth.ErrTokenRequired,
		},
		{
			name:  "Garbage",
			token: func() string { return "not-a-jwt" },
			want:  auth.ErrInvalidToken,
		},
		{
			name: "WrongSecret",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					UserID: "user-1",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-1",
						Issuer:    "token-auth-test",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}).SignedString([]byte("other"))
				return s
			},
			want: auth.ErrInvalidToken,
		},
		{
			name: "NoneAlgorithm",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
					UserID: "user-1",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-1",
						Issuer:    "token-auth-test",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}).SignedString(jwt.UnsafeAllowNoneSignatureType)
				return s
			},
			want: auth.ErrInvalidToken,
		},
		{
			name: "MissingExpiry",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					UserID:           "user-1",
					RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "token-auth-test"},
				}).SignedString([]byte("access-secret"))
				return s
			},
			want: auth.ErrInvalidToken,
		},
		{
			name: "WrongIssuer",
			token: func() string {
				s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
					UserID: "user-1",
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-1",
						Issuer:    "someone-else",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}).SignedString([]byte("access-secret"))
				return s
			},
			want: auth.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.ParseAccess(tt.token()); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestJWTIssuer_ClockOption(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	old, err := NewJWTIssuer(Options{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "token-auth-test",
		Now:           func() time.Time { return past },
	})
	if err != nil {
		t.Fatal(err)
	}
	token, exp, err := old.IssueAccess(auth.User{ID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Before(time.Now()) {
		t.Fatalf("expected expiry in the past, got %v", exp)
	}

	if _, err := newTestIssuer(t).ParseAccess(token); !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}
