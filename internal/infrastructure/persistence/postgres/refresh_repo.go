package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	authDomain "token-auth/internal/domain/auth"
)

// RefreshRepo 以 user_id 為主鍵保存最近一次簽發的 refresh token 雜湊。
type RefreshRepo struct {
	db *sql.DB
}

// NewRefreshRepo 建立 RefreshRepo。
func NewRefreshRepo(db *sql.DB) *RefreshRepo {
	return &RefreshRepo{db: db}
}

// Save 覆蓋該使用者的 refresh token。
func (r *RefreshRepo) Save(ctx context.Context, rec authDomain.RefreshRecord) error {
	const q = `
INSERT INTO refresh_tokens (user_id, token_hash, email, display_name, photo_url, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
	token_hash = EXCLUDED.token_hash,
	email = EXCLUDED.email,
	display_name = EXCLUDED.display_name,
	photo_url = EXCLUDED.photo_url,
	expires_at = EXCLUDED.expires_at,
	created_at = EXCLUDED.created_at;
`
	_, err := r.db.ExecContext(ctx, q, rec.UserID, rec.TokenHash, rec.Email, rec.DisplayName, rec.PhotoURL, rec.ExpiresAt, rec.CreatedAt)
	return err
}

// Get 取得該使用者的 refresh token。
func (r *RefreshRepo) Get(ctx context.Context, userID string) (authDomain.RefreshRecord, error) {
	const q = `
SELECT user_id, token_hash, email, display_name, photo_url, expires_at, created_at
FROM refresh_tokens
WHERE user_id = $1;
`
	var rec authDomain.RefreshRecord
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&rec.UserID, &rec.TokenHash, &rec.Email, &rec.DisplayName, &rec.PhotoURL, &rec.ExpiresAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.RefreshRecord{}, authDomain.ErrRefreshNotFound
		}
		return authDomain.RefreshRecord{}, err
	}
	return rec, nil
}

// Delete 移除該使用者的 refresh token，不存在時不視為錯誤。
func (r *RefreshRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// PurgeExpired 刪除已過期的紀錄。
func (r *RefreshRepo) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
