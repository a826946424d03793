package httpapi

import (
	"net/http"
	"strings"
	"time"

	"token-auth/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

func (s *Server) setRefreshCookie(c *gin.Context, token string, expiry time.Time) {
	host, _, _ := strings.Cut(c.Request.Host, ":")
	isLocal := host == "localhost" || host == "127.0.0.1" || host == ""

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		refreshCookieName,
		token,
		int(expiry.Sub(s.now()).Seconds()),
		"/api/auth",
		"",
		!isLocal, // Secure: only if not local
		true,     // HttpOnly
	)
}

func (s *Server) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", false, true)
}

func (s *Server) tokenBody(pair auth.TokenPair, includeRefresh bool) tokenResponse {
	out := tokenResponse{
		Success:     true,
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(pair.AccessExpiry.Sub(s.now()).Round(time.Second) / time.Second),
	}
	if includeRefresh {
		out.RefreshToken = pair.RefreshToken
	}
	return out
}

func userBody(u auth.User) *userResponse {
	out := &userResponse{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt.UTC()
		out.CreatedAt = &created
	}
	return out
}

func claimsBody(cl auth.Claims) claimsResponse {
	return claimsResponse{
		UID:         cl.UserID,
		Email:       cl.Email,
		DisplayName: cl.DisplayName,
		PhotoURL:    cl.PhotoURL,
		IssuedAt:    cl.IssuedAt.Unix(),
		ExpiresAt:   cl.ExpiresAt.Unix(),
	}
}

func parseBearer(h string) string {
	if h == "" {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentClaims(c *gin.Context) (auth.Claims, bool) {
	if v, ok := c.Get(claimsKey); ok {
		if cl, ok := v.(auth.Claims); ok {
			return cl, true
		}
	}
	return auth.Claims{}, false
}
