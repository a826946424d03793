package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// RefreshRecord 保存某使用者最近一次簽發的 refresh token。
// 每個 user id 只保留一筆，新的簽發會覆蓋舊的。
type RefreshRecord struct {
	UserID      string
	TokenHash   string
	Email       string
	DisplayName string
	PhotoURL    string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// NewRefreshRecord 由簽發結果建立紀錄，只保存 token 雜湊。
func NewRefreshRecord(user User, token string, expiresAt, now time.Time) RefreshRecord {
	return RefreshRecord{
		UserID:      user.ID,
		TokenHash:   HashToken(token),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}
}

// Active 檢查紀錄是否仍在有效期內。
func (r RefreshRecord) Active(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

// Matches 以固定時間比較 token 雜湊。
func (r RefreshRecord) Matches(token string) bool {
	if r.TokenHash == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(r.TokenHash), []byte(HashToken(token))) == 1
}

// User 還原紀錄中的使用者資料，供重新簽發 access token。
func (r RefreshRecord) User() User {
	return User{
		ID:          r.UserID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
	}
}

// HashToken 回傳 token 的 SHA-256 hex。
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshStore 以 user id 為鍵儲存 refresh token。
type RefreshStore interface {
	Save(ctx context.Context, rec RefreshRecord) error
	// Get 找不到時回傳 ErrRefreshNotFound。
	Get(ctx context.Context, userID string) (RefreshRecord, error)
	Delete(ctx context.Context, userID string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
