package hydration

import (
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

// SeriesPoint is one calendar day of a window series.
type SeriesPoint struct {
	Date   time.Time
	Amount int
	Goal   int
}

// WindowSeries returns one point per day in [start, end], oldest first.
// Days without an entry have Amount 0. Every point carries the given goal.
// An inverted range yields an empty series.
func WindowSeries(entries []*models.HydrationEntry, goal int, start, end time.Time) []SeriesPoint {
	start, end = timex.DateOf(start), timex.DateOf(end)
	if end.Before(start) {
		return []SeriesPoint{}
	}

	byDate := make(map[time.Time]int, len(entries))
	for _, e := range entries {
		byDate[timex.DateOf(e.Date)] += e.Amount
	}

	var points []SeriesPoint
	for d := start; !d.After(end); d = timex.AddDays(d, 1) {
		points = append(points, SeriesPoint{Date: d, Amount: byDate[d], Goal: goal})
	}
	return points
}

// WeekdayLabel is the three-letter English weekday used on chart axes.
func WeekdayLabel(d time.Time) string {
	return d.Weekday().String()[:3]
}

// HistoryItem is a logged day as returned by the history API.
type HistoryItem struct {
	Date    time.Time
	Amount  int
	Goal    int
	MetGoal bool
}

// History maps logged entries to history items, keeping their order.
// Unlike WindowSeries it does not fill gaps.
func History(entries []*models.HydrationEntry, goal int) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{
			Date:    timex.DateOf(e.Date),
			Amount:  e.Amount,
			Goal:    goal,
			MetGoal: MetGoal(e.Amount, goal),
		})
	}
	return items
}

// ExportRow is one line of the JSON export. It deliberately has no
// met-goal flag.
type ExportRow struct {
	Date   string `json:"date"`
	Amount int    `json:"amount"`
	Goal   int    `json:"goal"`
}

// ExportRows converts entries to export rows, keeping their order.
func ExportRows(entries []*models.HydrationEntry, goal int) []ExportRow {
	rows := make([]ExportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ExportRow{Date: timex.FormatDate(e.Date), Amount: e.Amount, Goal: goal})
	}
	return rows
}
