package httpapi

import (
	"errors"
	"io"
	"net/http"

	appauth "token-auth/internal/application/auth"
	"token-auth/internal/domain/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (s *Server) handleLogin(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "Email is required")
		return
	}

	res, err := s.loginUC.Execute(c.Request.Context(), appauth.LoginInput{Email: body.Email})
	if err != nil {
		s.respondError(c, "login", err)
		return
	}
	s.logger.WithFields(logrus.Fields{"uid": res.User.ID, "email": res.User.Email}).Info("login succeeded")

	s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)
	resp := s.tokenBody(res.Token, true)
	resp.User = userBody(res.User)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRegister(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "User ID and email are required")
		return
	}

	res, err := s.registerUC.Execute(c.Request.Context(), appauth.RegisterInput{
		UID:         body.UID,
		Email:       body.Email,
		DisplayName: body.DisplayName,
		PhotoURL:    body.PhotoURL,
	})
	if err != nil {
		s.respondError(c, "register", err)
		return
	}
	s.logger.WithFields(logrus.Fields{"uid": res.User.ID, "email": res.User.Email}).Info("register succeeded")

	s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)
	resp := s.tokenBody(res.Token, true)
	resp.User = userBody(res.User)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLogout(c *gin.Context) {
	var body logoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "User ID is required")
		return
	}

	if err := s.logoutUC.Execute(c.Request.Context(), body.UserID); err != nil {
		s.respondError(c, "logout", err)
		return
	}
	s.logger.WithField("uid", body.UserID).Info("logout succeeded")

	s.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleRefresh 讀取 body 的 refreshToken，沒有時改用 refresh_token cookie。
func (s *Server) handleRefresh(c *gin.Context) {
	var body refreshRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, http.StatusBadRequest, errCodeBadRequest, "invalid body")
			return
		}
	}
	token := body.RefreshToken
	if token == "" {
		if v, err := c.Cookie(refreshCookieName); err == nil {
			token = v
		}
	}
	if token == "" {
		writeError(c, http.StatusBadRequest, errCodeBadRequest, "Refresh token required")
		return
	}

	res, err := s.refreshUC.Execute(c.Request.Context(), token)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrTokenExpired):
		s.logger.WithError(err).Info("refresh rejected")
		writeError(c, http.StatusForbidden, errCodeTokenExpired, "Refresh token expired")
		return
	case errors.Is(err, auth.ErrInvalidToken):
		s.logger.WithError(err).Info("refresh rejected")
		writeError(c, http.StatusForbidden, errCodeForbidden, "Invalid refresh token")
		return
	default:
		s.respondError(c, "refresh", err)
		return
	}

	if res.Rotated {
		s.setRefreshCookie(c, res.Token.RefreshToken, res.Token.RefreshExpiry)
	}
	c.JSON(http.StatusOK, s.tokenBody(res.Token, res.Rotated))
}
