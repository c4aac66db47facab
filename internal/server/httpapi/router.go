package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route. limiter may be nil.
func (h *Handler) NewRouter(limiter *IPRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger())
	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}

	authorized := r.Group("/")
	authorized.Use(h.RequireAuth())
	{
		authorized.GET("/api/dashboard", h.Dashboard)
		authorized.POST("/api/entries", h.LogAmount)
		authorized.DELETE("/api/entries/:id", h.DeleteEntry)
		authorized.POST("/delete-entry/:id", h.DeleteEntry)
		authorized.GET("/api/history", h.History)
		authorized.GET("/api/series", h.Series)
		authorized.GET("/api/streak", h.Streak)

		authorized.GET("/api/profile", h.Profile)
		authorized.PUT("/api/profile", h.UpdateProfile)
		authorized.POST("/update-theme", h.UpdateTheme)
		authorized.POST("/api/profile/picture", h.UploadPicture)
		authorized.GET("/api/profile/picture", h.Picture)
		authorized.DELETE("/api/account", h.DeleteAccount)

		authorized.GET("/export/json", h.ExportJSON)
		authorized.GET("/export/pdf", h.ExportPDF)
	}

	return r
}
