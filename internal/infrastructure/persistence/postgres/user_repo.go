package postgres

import (
	"context"
	"database/sql"
	"errors"

	authDomain "token-auth/internal/domain/auth"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// UserRepo 提供使用者資料的存取。
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo 建立 UserRepo。
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Save 以 id 為鍵新增或更新使用者；email 已被其他 id 使用時回傳 ErrEmailTaken。
func (r *UserRepo) Save(ctx context.Context, u authDomain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	const q = `
INSERT INTO users (id, email, display_name, photo_url, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	email = EXCLUDED.email,
	display_name = EXCLUDED.display_name,
	photo_url = EXCLUDED.photo_url;
`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.DisplayName, u.PhotoURL, u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return authDomain.ErrEmailTaken
	}
	return err
}

// FindByID 依 ID 查詢使用者。
func (r *UserRepo) FindByID(ctx context.Context, id string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, photo_url, created_at
FROM users
WHERE id = $1;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail 依 email 查詢使用者。
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (authDomain.User, error) {
	const q = `
SELECT id, email, display_name, photo_url, created_at
FROM users
WHERE email = $1;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepo) scanOne(row *sql.Row) (authDomain.User, error) {
	var u authDomain.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authDomain.User{}, authDomain.ErrUserNotFound
		}
		return authDomain.User{}, err
	}
	return u, nil
}
