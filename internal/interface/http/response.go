package httpapi

import (
	"errors"
	"net/http"

	appauth "token-auth/internal/application/auth"
	"token-auth/internal/domain/auth"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Success:   false,
		Error:     msg,
		ErrorCode: code,
	})
}

// statusForError 把 use case 錯誤轉為 HTTP 狀態、錯誤碼與訊息。
func statusForError(err error) (int, string, string) {
	switch {
	case errors.Is(err, appauth.ErrInvalidInput):
		return http.StatusBadRequest, errCodeBadRequest, err.Error()
	case errors.Is(err, auth.ErrTokenRequired):
		return http.StatusUnauthorized, errCodeUnauthorized, "Access token required"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, errCodeTokenExpired, "Access token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden, errCodeForbidden, "Invalid token"
	case errors.Is(err, auth.ErrRefreshNotFound), errors.Is(err, auth.ErrRefreshMismatch):
		return http.StatusForbidden, errCodeForbidden, "Invalid refresh token"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, errCodeConflict, "email already registered"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, errCodeNotFound, "user not found"
	default:
		return http.StatusInternalServerError, errCodeInternal, "internal error"
	}
}

// respondError 回寫錯誤；500 會記錄原始錯誤，回應只帶通用訊息。
func (s *Server) respondError(c *gin.Context, op string, err error) {
	status, code, msg := statusForError(err)
	entry := s.logger.WithError(err).WithField("op", op)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.WithField("status", status).Info("request rejected")
	}
	writeError(c, status, code, msg)
}
