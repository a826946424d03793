package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	authDomain "token-auth/internal/domain/auth"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable 包裝所有 Redis 連線層錯誤。
var ErrRedisUnavailable = errors.New("redis unavailable")

// RefreshStore 以 Redis 保存 refresh token，key 的 TTL 等於 token 剩餘效期，
// 過期紀錄由 Redis 自行清除。
type RefreshStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRefreshStore 建立 Redis refresh store，prefix 為空時使用 "tokenauth"。
func NewRefreshStore(client redis.UniversalClient, prefix string) *RefreshStore {
	if prefix == "" {
		prefix = "tokenauth"
	}
	return &RefreshStore{redis: client, prefix: prefix, now: time.Now}
}

type refreshBlob struct {
	TokenHash   string    `json:"token_hash"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *RefreshStore) key(userID string) string {
	return s.prefix + ":refresh:" + userID
}

// Save 覆蓋該使用者的 refresh token；已過期的紀錄不寫入並刪除舊值。
func (s *RefreshStore) Save(ctx context.Context, rec authDomain.RefreshRecord) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, rec.UserID)
	}
	data, err := json.Marshal(refreshBlob{
		TokenHash:   rec.TokenHash,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		PhotoURL:    rec.PhotoURL,
		ExpiresAt:   rec.ExpiresAt,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(rec.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *RefreshStore) Get(ctx context.Context, userID string) (authDomain.RefreshRecord, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authDomain.RefreshRecord{}, authDomain.ErrRefreshNotFound
		}
		return authDomain.RefreshRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	var blob refreshBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return authDomain.RefreshRecord{}, fmt.Errorf("decode refresh record: %w", err)
	}
	return authDomain.RefreshRecord{
		UserID:      userID,
		TokenHash:   blob.TokenHash,
		Email:       blob.Email,
		DisplayName: blob.DisplayName,
		PhotoURL:    blob.PhotoURL,
		ExpiresAt:   blob.ExpiresAt,
		CreatedAt:   blob.CreatedAt,
	}, nil
}

func (s *RefreshStore) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// PurgeExpired 不需處理，交由 key TTL。
func (s *RefreshStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
