package hydration

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

// DefaultReportDays is the length of the trailing range used when a
// report request has no usable dates. The range ends today and starts
// DefaultReportDays before it.
const DefaultReportDays = 30

// MaxRangeDays bounds an explicit range. Longer spans fall back to the
// trailing range, since series hold one point per day.
const MaxRangeDays = 366

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ReportOptions are presentation toggles. Only IncludeDetails changes the
// payload; the others are passed through to the renderer.
type ReportOptions struct {
	IncludeCharts  bool
	IncludeStats   bool
	IncludeDetails bool
	Range          DateRange
}

// DefaultReportOptions enables everything over the trailing range.
func DefaultReportOptions(today time.Time) ReportOptions {
	return ReportOptions{
		IncludeCharts:  true,
		IncludeStats:   true,
		IncludeDetails: true,
		Range:          TrailingRange(today),
	}
}

type ReportHeader struct {
	UserName    string
	DailyGoal   int
	GeneratedAt time.Time
}

type ReportSummary struct {
	TotalIntake int64
	DaysTracked int
	DaysMetGoal int
	SuccessRate float64
}

type ReportRow struct {
	Date    time.Time
	Amount  int
	MetGoal bool
}

// Report is the structured payload handed to a renderer.
type Report struct {
	Header  ReportHeader
	Summary ReportSummary
	// Details is nil unless Options.IncludeDetails is set.
	Details []ReportRow
	// Series is the gap-filled range used for charts.
	Series  []SeriesPoint
	Options ReportOptions
}

// BuildReport assembles a report from the entries included in the range.
// Days tracked counts logged entries only; gap days do not count.
func BuildReport(entries []*models.HydrationEntry, user *models.User, opts ReportOptions, generatedAt time.Time) *Report {
	r := &Report{
		Header: ReportHeader{
			UserName:    user.UserName,
			DailyGoal:   user.DailyGoal,
			GeneratedAt: generatedAt,
		},
		Options: opts,
	}

	for _, e := range entries {
		met := MetGoal(e.Amount, user.DailyGoal)
		r.Summary.TotalIntake += int64(e.Amount)
		r.Summary.DaysTracked++
		if met {
			r.Summary.DaysMetGoal++
		}
		if opts.IncludeDetails {
			r.Details = append(r.Details, ReportRow{Date: timex.DateOf(e.Date), Amount: e.Amount, MetGoal: met})
		}
	}
	r.Summary.SuccessRate = SuccessRate(r.Summary.DaysMetGoal, r.Summary.DaysTracked)

	if opts.IncludeCharts {
		r.Series = WindowSeries(entries, user.DailyGoal, opts.Range.Start, opts.Range.End)
	}
	return r
}

// SuccessRate is met/tracked as a percentage, 0 when nothing was tracked.
func SuccessRate(met, tracked int) float64 {
	if tracked == 0 {
		return 0
	}
	return float64(met) / float64(tracked) * 100
}

// TrailingRange is [today-DefaultReportDays, today].
func TrailingRange(today time.Time) DateRange {
	today = timex.DateOf(today)
	return DateRange{Start: timex.AddDays(today, -DefaultReportDays), End: today}
}

// ResolveRange parses an explicit YYYY-MM-DD range. Both values must be
// present, well formed and at most MaxRangeDays apart, otherwise the
// trailing range is used.
func ResolveRange(start, end string, today time.Time) DateRange {
	if start == "" || end == "" {
		return TrailingRange(today)
	}
	s, err := timex.ParseDate(start)
	if err != nil {
		return TrailingRange(today)
	}
	e, err := timex.ParseDate(end)
	if err != nil {
		return TrailingRange(today)
	}
	if e.After(timex.AddDays(s, MaxRangeDays)) {
		return TrailingRange(today)
	}
	return DateRange{Start: s, End: e}
}

// ReportFilename names the PDF after the generation date, not the range.
func ReportFilename(generatedAt time.Time) string {
	return fmt.Sprintf("hydration_report_%s.pdf", generatedAt.Format("20060102"))
}
