package httpapi

import (
	"io"
	"net/http"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/gin-gonic/gin"
)

type profileUpdateRequest struct {
	DailyGoal int    `json:"daily_goal" form:"daily_goal"`
	Theme     string `json:"theme" form:"theme"`
}

type themeRequest struct {
	Theme string `json:"theme" form:"theme"`
}

type statsResponse struct {
	TotalEntries      int             `json:"total_entries"`
	TotalIntakeLiters int64           `json:"total_intake_liters"`
	Recent            []entryResponse `json:"recent_entries"`
}

type profileResponse struct {
	User  userResponse  `json:"user"`
	Stats statsResponse `json:"stats"`
}

func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	user, err := h.users.GetUser(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	stats, err := h.entries.ProfileStats(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		User: newUserResponse(user),
		Stats: statsResponse{
			TotalEntries:      stats.TotalEntries,
			TotalIntakeLiters: stats.TotalIntakeLiters,
			Recent:            newEntryResponses(stats.Recent),
		},
	})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), services.ProfileUpdate{
		DailyGoal: req.DailyGoal,
		Theme:     models.Theme(req.Theme),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *Handler) UpdateTheme(c *gin.Context) {
	var req themeRequest
	_ = c.ShouldBind(&req)

	if err := h.users.UpdateTheme(c.Request.Context(), currentUserID(c), models.Theme(req.Theme)); err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			c.JSON(status, gin.H{"success": false, "error": "Invalid theme"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadPicture takes the multipart field "file".
func (h *Handler) UploadPicture(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	key, err := h.users.UploadProfilePicture(c.Request.Context(), currentUserID(c), fh.Filename, f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_picture": key})
}

// Picture redirects to a presigned URL or streams the stored file.
func (h *Handler) Picture(c *gin.Context) {
	p, err := h.users.ProfilePicture(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if p.URL != "" {
		c.Redirect(http.StatusFound, p.URL)
		return
	}
	defer p.Body.Close()

	c.Header("Content-Type", p.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, p.Body); err != nil {
		h.log.Warn(c.Request.Context(), "error streaming picture", "error", err)
	}
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	if err := h.users.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
