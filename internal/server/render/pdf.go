// Package render turns an assembled hydration report into a PDF document.
package render

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/timex"
	"github.com/go-pdf/fpdf"
)

// maxChartDays caps the bar chart at the most recent days of the range.
const maxChartDays = 31

const (
	pageWidth   = 210.0
	marginLeft  = 15.0
	contentW    = pageWidth - 2*marginLeft
	chartHeight = 60.0
)

// PDFRenderer lays out reports on A4 pages with the core Helvetica font.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for r. Summary, chart and details are
// emitted according to r.Options.
func (p *PDFRenderer) Render(r *hydration.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, 15, marginLeft)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Hydration Report", true)
	pdf.SetCreationDate(r.Header.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(contentW, 12, "Hydration Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	line(pdf, tr("User: "+r.Header.UserName))
	line(pdf, fmt.Sprintf("Daily Goal: %dml", r.Header.DailyGoal))
	line(pdf, "Report Date: "+timex.FormatDate(r.Header.GeneratedAt))
	line(pdf, fmt.Sprintf("Period: %s to %s",
		timex.FormatDate(r.Options.Range.Start), timex.FormatDate(r.Options.Range.End)))
	pdf.Ln(4)

	if r.Options.IncludeStats {
		heading(pdf, "Summary Statistics")
		line(pdf, fmt.Sprintf("Total Intake: %dml", r.Summary.TotalIntake))
		line(pdf, fmt.Sprintf("Days Tracked: %d", r.Summary.DaysTracked))
		line(pdf, fmt.Sprintf("Days Met Goal: %d (%.1f%%)", r.Summary.DaysMetGoal, r.Summary.SuccessRate))
		pdf.Ln(4)
	}

	if r.Options.IncludeCharts && len(r.Series) > 0 {
		heading(pdf, "Daily Intake")
		barChart(pdf, r.Series, r.Header.DailyGoal)
		pdf.Ln(4)
	}

	if len(r.Details) > 0 {
		heading(pdf, "Daily Intake Details")
		detailsTable(pdf, r.Details)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 9, text, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *fpdf.Fpdf, text string) {
	pdf.CellFormat(contentW, 6, text, "", 1, "L", false, 0, "")
}

// barChart draws one bar per day, scaled to the larger of the goal and the
// highest amount, with the goal as a horizontal line.
func barChart(pdf *fpdf.Fpdf, series []hydration.SeriesPoint, goal int) {
	if len(series) > maxChartDays {
		series = series[len(series)-maxChartDays:]
	}

	top := goal
	for _, pt := range series {
		top = max(top, pt.Amount)
	}
	if top <= 0 {
		top = 1
	}

	if pdf.GetY()+chartHeight+10 > 280 {
		pdf.AddPage()
	}
	x0, y0 := marginLeft, pdf.GetY()
	base := y0 + chartHeight
	slot := contentW / float64(len(series))
	barW := slot * 0.7

	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(x0, base, x0+contentW, base)

	for i, pt := range series {
		h := float64(pt.Amount) / float64(top) * chartHeight
		if pt.Amount >= goal {
			pdf.SetFillColor(46, 139, 87)
		} else {
			pdf.SetFillColor(70, 130, 180)
		}
		x := x0 + float64(i)*slot + (slot-barW)/2
		if h > 0 {
			pdf.Rect(x, base-h, barW, h, "F")
		}
	}

	if goal > 0 {
		gy := base - float64(goal)/float64(top)*chartHeight
		pdf.SetDrawColor(220, 20, 60)
		pdf.SetLineWidth(0.4)
		pdf.Line(x0, gy, x0+contentW, gy)
		pdf.SetLineWidth(0.2)
		pdf.SetDrawColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "", 6)
	for i, pt := range series {
		x := x0 + float64(i)*slot
		pdf.SetXY(x, base+1)
		pdf.CellFormat(slot, 3, pt.Date.Format("01/02"), "", 0, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetXY(marginLeft, base+6)
}

func detailsTable(pdf *fpdf.Fpdf, rows []hydration.ReportRow) {
	widths := []float64{60, 60, 60}
	header := func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		for i, h := range []string{"Date", "Amount (ml)", "Goal Met"} {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
	}

	header()
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range rows {
		if pdf.GetY()+7 > pageH-bottom {
			pdf.AddPage()
			header()
		}
		met := "No"
		if row.MetGoal {
			met = "Yes"
		}
		pdf.CellFormat(widths[0], 7, timex.FormatDate(row.Date), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", row.Amount), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[2], 7, met, "1", 0, "C", true, 0, "")
		pdf.Ln(-1)
	}
}
