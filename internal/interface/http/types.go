package httpapi

import "time"

type loginRequest struct {
	Email string `json:"email" binding:"required"`
	// Password 只為相容舊前端，不做驗證。
	Password string `json:"password"`
}

type registerRequest struct {
	UID         string `json:"uid" binding:"required"`
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type logoutRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName,omitempty"`
	PhotoURL    string     `json:"photoURL,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type tokenResponse struct {
	Success      bool          `json:"success"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	TokenType    string        `json:"tokenType"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         *userResponse `json:"user,omitempty"`
}

type claimsResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	IssuedAt    int64  `json:"iat"`
	ExpiresAt   int64  `json:"exp"`
}
