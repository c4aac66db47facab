package hydration

import (
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

// CurrentStreak counts consecutive goal-met days walking back from today.
// entries must be sorted by date, newest first.
//
// Entries dated after the cursor are skipped. The walk stops at the first
// day that is missing or below goal, so a user who has not logged today
// has a streak of 0.
func CurrentStreak(entries []*models.HydrationEntry, goal int, today time.Time) int {
	cursor := timex.DateOf(today)
	streak := 0
	for _, e := range entries {
		d := timex.DateOf(e.Date)
		if d.After(cursor) {
			continue
		}
		if !d.Equal(cursor) || !MetGoal(e.Amount, goal) {
			break
		}
		streak++
		cursor = timex.AddDays(cursor, -1)
	}
	return streak
}
