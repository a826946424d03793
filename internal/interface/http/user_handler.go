package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleProtected(c *gin.Context) {
	claims, _ := currentClaims(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "This is a protected route",
		"user":    claimsBody(claims),
	})
}

// handleMe 回傳 token 持有者在 repository 中的資料。
func (s *Server) handleMe(c *gin.Context) {
	claims, _ := currentClaims(c)
	user, err := s.users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		s.respondError(c, "me", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": userBody(user)})
}
