package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/dbx"
	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

const (
	dashboardDays = 7
	recentEntries = 10
)

// History periods accepted by EntryService.History.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// DayPoint is a window series point with its chart label.
type DayPoint struct {
	hydration.SeriesPoint
	Label string
}

// Dashboard is everything the home screen shows for one day.
type Dashboard struct {
	Goal         int
	TodayAmount  int
	Progress     float64
	Week         []DayPoint
	Message      string
	Streak       int
	TodayEntries []*models.HydrationEntry
}

// ProfileStats summarizes a user's whole history.
type ProfileStats struct {
	TotalEntries int
	// TotalIntakeLiters is the summed amount in whole liters, rounded down.
	TotalIntakeLiters int64
	Recent            []*models.HydrationEntry
}

// EntryService logs and reads hydration entries and derives goal
// progress, streaks and chart series from them.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	intn        func(n int) int
}

func NewEntryService(db *sql.DB, repomanager repomanager.RepositoryManager) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: repomanager,
		intn:        rand.IntN,
	}
}

// LogAmount adds amount ml to the user's entry for date, creating it on the
// first log of the day. Non-positive amounts, and amounts that would push
// the day past models.MaxAmount, wrap common.ErrorValidation and change
// nothing.
func (s *EntryService) LogAmount(ctx context.Context, userID int64, amount int, date time.Time) (*models.HydrationEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive number of ml", common.ErrorValidation)
	}
	if amount > models.MaxAmount {
		return nil, fmt.Errorf("%w: amount cannot exceed %d ml", common.ErrorValidation, models.MaxAmount)
	}

	var entry *models.HydrationEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.repomanager.Entries(tx).AddAmount(ctx, userID, timex.DateOf(date), amount)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error logging amount: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes the entry if requestingUserID owns it. Someone
// else's entry yields common.ErrorUnauthorized and is left untouched.
func (s *EntryService) DeleteEntry(ctx context.Context, entryID, requestingUserID int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		e, err := repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e.UserID != requestingUserID {
			return common.ErrorUnauthorized
		}
		return repo.Delete(ctx, entryID)
	})
}

// CurrentStreak returns the number of consecutive goal-met days ending today.
func (s *EntryService) CurrentStreak(ctx context.Context, userID int64, today time.Time) (int, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.streak(ctx, user, today)
}

func (s *EntryService) streak(ctx context.Context, user *models.User, today time.Time) (int, error) {
	entries, err := s.repomanager.Entries(s.db).ListByUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	return hydration.CurrentStreak(entries, user.DailyGoal, today), nil
}

// WindowSeries returns one point per day in [start, end] with gaps as 0.
func (s *EntryService) WindowSeries(ctx context.Context, userID int64, start, end time.Time) ([]hydration.SeriesPoint, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, user, start, end)
}

func (s *EntryService) window(ctx context.Context, user *models.User, start, end time.Time) ([]hydration.SeriesPoint, error) {
	start, end = timex.DateOf(start), timex.DateOf(end)
	if end.Before(start) {
		return []hydration.SeriesPoint{}, nil
	}
	entries, err := s.repomanager.Entries(s.db).ListRange(ctx, user.ID, start, end)
	if err != nil {
		return nil, err
	}
	return hydration.WindowSeries(entries, user.DailyGoal, start, end), nil
}

// History lists the logged days of the last week (default) or month.
func (s *EntryService) History(ctx context.Context, userID int64, period string, today time.Time) ([]hydration.HistoryItem, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today = timex.DateOf(today)
	start := timex.AddDays(today, -(dashboardDays - 1))
	if period == PeriodMonth {
		start = timex.AddDays(today, -hydration.DefaultReportDays)
	}

	entries, err := s.repomanager.Entries(s.db).ListRange(ctx, userID, start, today)
	if err != nil {
		return nil, err
	}
	return hydration.History(entries, user.DailyGoal), nil
}

// Dashboard assembles today's progress, the last seven days and the streak.
func (s *EntryService) Dashboard(ctx context.Context, userID int64, today time.Time) (*Dashboard, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	today = timex.DateOf(today)

	series, err := s.window(ctx, user, timex.AddDays(today, -(dashboardDays-1)), today)
	if err != nil {
		return nil, err
	}
	week := make([]DayPoint, 0, len(series))
	for _, p := range series {
		week = append(week, DayPoint{SeriesPoint: p, Label: hydration.WeekdayLabel(p.Date)})
	}

	streak, err := s.streak(ctx, user, today)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Goal:         user.DailyGoal,
		Week:         week,
		Message:      hydration.MotivationalMessage(s.intn),
		Streak:       streak,
		TodayEntries: []*models.HydrationEntry{},
	}
	if len(series) > 0 {
		d.TodayAmount = series[len(series)-1].Amount
	}
	d.Progress = hydration.Progress(d.TodayAmount, user.DailyGoal)

	if d.TodayAmount > 0 {
		e, err := s.repomanager.Entries(s.db).GetByDate(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		d.TodayEntries = append(d.TodayEntries, e)
	}
	return d, nil
}

// ProfileStats counts logged days, sums the intake and lists the most
// recent entries.
func (s *EntryService) ProfileStats(ctx context.Context, userID int64) (*ProfileStats, error) {
	repo := s.repomanager.Entries(s.db)
	days, total, err := repo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(all) > recentEntries {
		all = all[:recentEntries]
	}
	if all == nil {
		all = []*models.HydrationEntry{}
	}
	return &ProfileStats{TotalEntries: days, TotalIntakeLiters: total / 1000, Recent: all}, nil
}
