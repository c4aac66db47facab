package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ExportJSON(c *gin.Context) {
	rows, err := h.reports.ExportJSON(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportPDF sends the report as an attachment. Each include_* flag is on
// unless present with a value other than "true".
func (h *Handler) ExportPDF(c *gin.Context) {
	req := services.ReportRequest{
		StartDate:      c.Query("start_date"),
		EndDate:        c.Query("end_date"),
		IncludeCharts:  queryFlag(c, "include_charts"),
		IncludeStats:   queryFlag(c, "include_stats"),
		IncludeDetails: queryFlag(c, "include_details"),
	}

	name, data, err := h.reports.ExportPDF(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}

func queryFlag(c *gin.Context, name string) bool {
	v, ok := c.GetQuery(name)
	if !ok {
		return true
	}
	return v == "true"
}
