package auth

import (
	"context"
	"errors"
	"time"
)

// User 基本帳號資料，對應前端的 uid/email/displayName/photoURL。
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	CreatedAt   time.Time
}

// Validate 基本欄位檢查。
func (u User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// UserRepository 存取使用者資料。
type UserRepository interface {
	Save(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}
