package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) // Monday

func day(offset int) time.Time { return today.AddDate(0, 0, offset) }

func TestLogAmount_AccumulatesIntoOneEntry(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	s := NewEntryService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := s.LogAmount(context.Background(), u.ID, 300, today.Add(8*time.Hour))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := s.LogAmount(context.Background(), u.ID, 500, today.Add(20*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 800, second.Amount)
	all := rm.s.userEntries(u.ID)
	require.Len(t, all, 1)
	assert.Equal(t, 800, all[0].Amount)
	assert.Equal(t, today, all[0].Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogAmount_SeparateDaysAndUsers(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	alice := rm.s.addUser("alice", 2000)
	bob := rm.s.addUser("bob", 2000)
	s := NewEntryService(db, rm)

	for _, c := range []struct {
		user   int64
		date   time.Time
		amount int
	}{
		{alice.ID, day(0), 100}, {alice.ID, day(-1), 200}, {bob.ID, day(0), 300}, {alice.ID, day(0), 50},
	} {
		mock.ExpectBegin()
		mock.ExpectCommit()
		_, err := s.LogAmount(context.Background(), c.user, c.amount, c.date)
		require.NoError(t, err)
	}

	assert.Len(t, rm.s.userEntries(alice.ID), 2)
	assert.Len(t, rm.s.userEntries(bob.ID), 1)
	seen := map[entryKey]bool{}
	for _, e := range rm.s.entries {
		k := entryKey{e.UserID, e.Date}
		assert.False(t, seen[k], "duplicate (user, date)")
		seen[k] = true
	}
}

func TestLogAmount_RejectsNonPositive(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	s := NewEntryService(db, rm)

	for _, amount := range []int{0, -250} {
		_, err := s.LogAmount(context.Background(), u.ID, amount, today)
		assert.ErrorIs(t, err, common.ErrorValidation)
	}
	assert.Empty(t, rm.s.entries)
	require.NoError(t, mock.ExpectationsWereMet(), "no transaction is opened")
}

func TestLogAmount_RejectsAmountsPastColumnLimit(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	s := NewEntryService(db, rm)

	over := models.MaxAmount
	over++
	_, err := s.LogAmount(context.Background(), u.ID, over, today)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, rm.s.entries)
	require.NoError(t, mock.ExpectationsWereMet(), "no transaction is opened")
}

func TestLogAmount_RejectsDailyTotalOverflow(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	e := rm.s.addEntry(u.ID, today, models.MaxAmount-100)
	s := NewEntryService(db, rm)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := s.LogAmount(context.Background(), u.ID, 200, today)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, models.MaxAmount-100, rm.s.entries[e.ID].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogAmount_StoreErrorRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.s.entriesErr = errBoom{}
	s := NewEntryService(db, rm)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := s.LogAmount(context.Background(), 1, 100, today)
	assert.ErrorContains(t, err, "error logging amount: boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntry_OtherUsersEntryIsUntouched(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	alice := rm.s.addUser("alice", 2000)
	bob := rm.s.addUser("bob", 2000)
	bobs := rm.s.addEntry(bob.ID, today, 900)
	s := NewEntryService(db, rm)

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := s.DeleteEntry(context.Background(), bobs.ID, alice.ID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	left := rm.s.userEntries(bob.ID)
	require.Len(t, left, 1)
	assert.Equal(t, 900, left[0].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntry_OwnAndMissing(t *testing.T) {
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	alice := rm.s.addUser("alice", 2000)
	e := rm.s.addEntry(alice.ID, today, 900)
	s := NewEntryService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.DeleteEntry(context.Background(), e.ID, alice.ID))
	assert.Empty(t, rm.s.entries)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, s.DeleteEntry(context.Background(), e.ID, alice.ID), common.ErrorNotFound)
}

func TestCurrentStreak(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	rm.s.addEntry(u.ID, day(0), 2000)
	rm.s.addEntry(u.ID, day(-1), 2400)
	rm.s.addEntry(u.ID, day(-3), 5000)
	s := NewEntryService(db, rm)

	got, err := s.CurrentStreak(context.Background(), u.ID, today.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = s.CurrentStreak(context.Background(), 404, today)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWindowSeries(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 1800)
	rm.s.addEntry(u.ID, day(-6), 700)
	rm.s.addEntry(u.ID, day(-2), 1900)
	rm.s.addEntry(u.ID, day(-20), 1000)
	s := NewEntryService(db, rm)

	got, err := s.WindowSeries(context.Background(), u.ID, day(-6), today)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, 700, got[0].Amount)
	assert.Equal(t, 1900, got[4].Amount)
	for _, i := range []int{1, 2, 3, 5, 6} {
		assert.Zero(t, got[i].Amount)
	}
	for _, p := range got {
		assert.Equal(t, 1800, p.Goal)
	}

	empty, err := s.WindowSeries(context.Background(), u.ID, today, day(-1))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHistory(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	for _, off := range []int{0, -3, -6, -7, -30, -31} {
		rm.s.addEntry(u.ID, day(off), 2000+off)
	}
	s := NewEntryService(db, rm)

	week, err := s.History(context.Background(), u.ID, PeriodWeek, today)
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, day(-6), week[0].Date)
	assert.True(t, week[2].MetGoal)
	assert.False(t, week[1].MetGoal)

	month, err := s.History(context.Background(), u.ID, PeriodMonth, today)
	require.NoError(t, err)
	assert.Len(t, month, 5)

	other, err := s.History(context.Background(), u.ID, "year", today)
	require.NoError(t, err)
	assert.Equal(t, week, other)
}

func TestDashboard(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	rm.s.addEntry(u.ID, day(0), 2500)
	rm.s.addEntry(u.ID, day(-1), 2000)
	rm.s.addEntry(u.ID, day(-4), 800)
	s := NewEntryService(db, rm)
	s.intn = func(int) int { return 0 }

	d, err := s.Dashboard(context.Background(), u.ID, today.Add(10*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2000, d.Goal)
	assert.Equal(t, 2500, d.TodayAmount)
	assert.Equal(t, 100.0, d.Progress)
	assert.Equal(t, 2, d.Streak)
	assert.Equal(t, "Sip sip hooray! You're doing great! 💧", d.Message)
	require.Len(t, d.Week, 7)
	assert.Equal(t, "Tue", d.Week[0].Label)
	assert.Equal(t, "Mon", d.Week[6].Label)
	assert.Equal(t, 800, d.Week[2].Amount)
	require.Len(t, d.TodayEntries, 1)
	assert.Equal(t, 2500, d.TodayEntries[0].Amount)
}

func TestDashboard_NothingLoggedToday(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	rm.s.addEntry(u.ID, day(-1), 3000)
	s := NewEntryService(db, rm)

	d, err := s.Dashboard(context.Background(), u.ID, today)
	require.NoError(t, err)
	assert.Zero(t, d.TodayAmount)
	assert.Zero(t, d.Progress)
	assert.Zero(t, d.Streak)
	assert.Empty(t, d.TodayEntries)
	assert.NotEmpty(t, d.Message)
}

func TestProfileStats(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	u := rm.s.addUser("alice", 2000)
	for i := 0; i < 12; i++ {
		rm.s.addEntry(u.ID, day(-i), 1500)
	}
	s := NewEntryService(db, rm)

	st, err := s.ProfileStats(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, st.TotalEntries)
	assert.Equal(t, int64(18), st.TotalIntakeLiters)
	require.Len(t, st.Recent, 10)
	assert.Equal(t, today, st.Recent[0].Date)
}
