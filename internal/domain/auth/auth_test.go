package auth

import (
	"testing"
	"time"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{
			name:    "Valid User",
			user:    User{ID: "user-1", Email: "test@example.com"},
			wantErr: false,
		},
		{
			name:    "Missing Email",
			user:    User{ID: "user-1"},
			wantErr: true,
		},
		{
			name:    "Missing ID",
			user:    User{Email: "test@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRefreshRecord_Active(t *testing.T) {
	now := time.Now()
	rec := RefreshRecord{ExpiresAt: now.Add(time.Hour)}
	if !rec.Active(now) {
		t.Error("expected active")
	}

	rec.ExpiresAt = now.Add(-time.Second)
	if rec.Active(now) {
		t.Error("expected inactive due to expiry")
	}

	rec.ExpiresAt = now
	if rec.Active(now) {
		t.Error("expected inactive at exact expiry")
	}
}

func TestRefreshRecord_Matches(t *testing.T) {
	now := time.Now()
	rec := NewRefreshRecord(User{ID: "user-1", Email: "a@example.com"}, "token-a", now.Add(time.Hour), now)

	if rec.TokenHash == "token-a" {
		t.Fatal("plaintext token must not be stored")
	}
	if !rec.Matches("token-a") {
		t.Error("expected match for issued token")
	}
	if rec.Matches("token-b") {
		t.Error("expected mismatch for other token")
	}
	if rec.Matches("") {
		t.Error("expected mismatch for empty token")
	}
	if (RefreshRecord{}).Matches("token-a") {
		t.Error("expected mismatch for empty record")
	}
}

func TestRefreshRecord_User(t *testing.T) {
	user := User{ID: "user-1", Email: "a@example.com", DisplayName: "A", PhotoURL: "https://example.com/a.png"}
	rec := NewRefreshRecord(user, "t", time.Now(), time.Now())
	if got := rec.User(); got != user {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestClaims_User(t *testing.T) {
	c := Claims{UserID: "user-1", Email: "a@example.com"}
	u := c.User()
	if u.ID != "user-1" || u.Email != "a@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestHashToken_Stable(t *testing.T) {
	if HashToken("x") != HashToken("x") {
		t.Error("hash should be deterministic")
	}
	if len(HashToken("x")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashToken("x")))
	}
}
