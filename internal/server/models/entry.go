package models

import (
	"math"
	"time"
)

// MaxAmount is the largest ml value the INTEGER amount and daily_goal
// columns hold.
const MaxAmount = math.MaxInt32

// HydrationEntry is the accumulated intake of one user on one calendar day.
// Date is always a UTC midnight; there is at most one entry per (UserID, Date).
type HydrationEntry struct {
	ID        int64
	UserID    int64
	Amount    int
	Date      time.Time
	CreatedAt time.Time
}
