package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRoutes() {
	r := s.engine
	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, errCodeNotFound, "not found")
	})
	r.GET("/metrics", gin.WrapH(s.registry.Handler()))

	api := r.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/health", s.handleHealth)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/logout", s.handleLogout)
	authGroup.POST("/refresh", s.handleRefresh)

	api.GET("/protected", s.requireAuth(), s.handleProtected)
	api.GET("/users/me", s.requireAuth(), s.handleMe)
}
