package auth

import "time"

// TokenPair 封裝 access/refresh token。
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// Claims 為解碼後的 token 內容。
type Claims struct {
	ID          string
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// User 由 claims 還原使用者資料。
func (c Claims) User() User {
	return User{
		ID:          c.UserID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
	}
}
