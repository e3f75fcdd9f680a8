package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/zhpack/jobtrack/internal/navigation"
	"github.com/zhpack/jobtrack/internal/service"
)

func (s *Server) login(c *gin.Context) {
	var payload struct {
		EmployeeCode string `json:"employee_code" binding:"required"`
		Password     string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, profile, err := s.auth.Login(c.Request.Context(), payload.EmployeeCode, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "profile": profile})
}

// session is the single place views read the current identity from: the
// resolved profile plus the navigation computed for it.
func (s *Server) session(c *gin.Context) {
	profile := currentProfile(c)
	navbar, menu := navigation.ForProfile(profile.IsAdmin(), profile.Roles)
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"navigation": gin.H{
			"navbar": navbar,
			"menu":   menu,
		},
	})
}

func (s *Server) navigationPages(c *gin.Context) {
	profile := currentProfile(c)
	navbar, menu := navigation.ForProfile(profile.IsAdmin(), profile.Roles)
	c.JSON(http.StatusOK, gin.H{"navbar": navbar, "menu": menu})
}
