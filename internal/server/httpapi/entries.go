package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/dmitrijs2005/hydratr/internal/timex"
	"github.com/gin-gonic/gin"
)

type logAmountRequest struct {
	Amount int `json:"amount" form:"amount"`
}

type dashboardResponse struct {
	Goal         int             `json:"goal"`
	TodayAmount  int             `json:"today_amount"`
	Progress     float64         `json:"progress"`
	Streak       int             `json:"streak"`
	Message      string          `json:"message"`
	Week         []pointResponse `json:"week"`
	TodayEntries []entryResponse `json:"today_entries"`
}

func newDashboardResponse(d *services.Dashboard) dashboardResponse {
	week := make([]pointResponse, 0, len(d.Week))
	for _, p := range d.Week {
		week = append(week, pointResponse{Date: timex.FormatDate(p.Date), Label: p.Label, Amount: p.Amount, Goal: p.Goal})
	}
	return dashboardResponse{
		Goal:         d.Goal,
		TodayAmount:  d.TodayAmount,
		Progress:     d.Progress,
		Streak:       d.Streak,
		Message:      d.Message,
		Week:         week,
		TodayEntries: newEntryResponses(d.TodayEntries),
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.entries.Dashboard(c.Request.Context(), currentUserID(c), h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDashboardResponse(d))
}

// LogAmount accepts {"amount": n} or a form field amount.
func (h *Handler) LogAmount(c *gin.Context) {
	var req logAmountRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a number"})
		return
	}

	e, err := h.entries.LogAmount(c.Request.Context(), currentUserID(c), req.Amount, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEntryResponse(e))
}

// DeleteEntry answers {success, error?}. Deleting someone else's entry is
// 403 and leaves it in place.
func (h *Handler) DeleteEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid entry id"})
		return
	}

	err = h.entries.DeleteEntry(c.Request.Context(), id, currentUserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Entry not found"})
	default:
		h.log.Error(c.Request.Context(), "error deleting entry", "entry_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

// History lists logged days for period=week (default) or period=month.
func (h *Handler) History(c *gin.Context) {
	period := c.DefaultQuery("period", services.PeriodWeek)
	items, err := h.entries.History(c.Request.Context(), currentUserID(c), period, h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]historyResponse, 0, len(items))
	for _, it := range items {
		out = append(out, historyResponse{Date: timex.FormatDate(it.Date), Amount: it.Amount, Goal: it.Goal, MetGoal: it.MetGoal})
	}
	c.JSON(http.StatusOK, out)
}

// Series returns the gap-filled window between start_date and end_date,
// the trailing thirty days when either is missing or malformed.
func (h *Handler) Series(c *gin.Context) {
	r := hydration.ResolveRange(c.Query("start_date"), c.Query("end_date"), h.today())
	points, err := h.entries.WindowSeries(c.Request.Context(), currentUserID(c), r.Start, r.End)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]pointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, pointResponse{Date: timex.FormatDate(p.Date), Amount: p.Amount, Goal: p.Goal})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Streak(c *gin.Context) {
	n, err := h.entries.CurrentStreak(c.Request.Context(), currentUserID(c), h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": n})
}
