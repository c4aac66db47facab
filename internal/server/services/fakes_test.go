package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/dbx"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/entries"
	refreshtokensrepo "github.com/dmitrijs2005/hydratr/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/hydratr/internal/server/repositories/users"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- in-memory store shared by the fake repositories ---

type entryKey struct {
	userID int64
	date   time.Time
}

type memStore struct {
	users   map[int64]*models.User
	entries map[int64]*models.HydrationEntry
	byDay   map[entryKey]int64
	tokens  map[string]*models.RefreshToken
	nextID  int64

	entriesErr error
	usersErr   error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]*models.User{},
		entries: map[int64]*models.HydrationEntry{},
		byDay:   map[entryKey]int64{},
		tokens:  map[string]*models.RefreshToken{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(name string, goal int) *models.User {
	u := &models.User{
		ID: m.id(), UserName: name, Email: name + "@example.com", DailyGoal: goal,
		Theme: models.ThemeLight, ProfilePicture: models.DefaultProfilePicture,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addEntry(userID int64, date time.Time, amount int) *models.HydrationEntry {
	e, _ := (&memEntries{m}).AddAmount(context.Background(), userID, date, amount)
	return e
}

func (m *memStore) userEntries(userID int64) []*models.HydrationEntry {
	var out []*models.HydrationEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type memUsers struct{ s *memStore }

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, x := range r.s.users {
		if x.UserName == u.UserName || x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	c := *u
	r.s.users[u.ID] = &c
	return u, nil
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, name string) (*models.User, error) {
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.UserName == name {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) UpdateProfile(ctx context.Context, id int64, goal int, theme models.Theme) error {
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.DailyGoal, u.Theme = goal, theme
	return nil
}

func (r *memUsers) UpdateProfilePicture(ctx context.Context, id int64, key string) error {
	if r.s.usersErr != nil {
		return r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ProfilePicture = key
	return nil
}

// Delete cascades like the foreign keys do.
func (r *memUsers) Delete(ctx context.Context, id int64) error {
	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.users, id)
	for eid, e := range r.s.entries {
		if e.UserID == id {
			delete(r.s.byDay, entryKey{e.UserID, e.Date})
			delete(r.s.entries, eid)
		}
	}
	for tok, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, tok)
		}
	}
	return nil
}

// memEntries enforces the (user, date) uniqueness of the real table.
type memEntries struct{ s *memStore }

func (r *memEntries) AddAmount(ctx context.Context, userID int64, date time.Time, amount int) (*models.HydrationEntry, error) {
	if r.s.entriesErr != nil {
		return nil, r.s.entriesErr
	}
	k := entryKey{userID, timex.DateOf(date)}
	if id, ok := r.s.byDay[k]; ok {
		e := r.s.entries[id]
		if e.Amount > models.MaxAmount-amount {
			return nil, fmt.Errorf("%w: daily total cannot exceed %d ml", common.ErrorValidation, models.MaxAmount)
		}
		e.Amount += amount
		c := *e
		return &c, nil
	}
	e := &models.HydrationEntry{ID: r.s.id(), UserID: userID, Amount: amount, Date: k.date, CreatedAt: time.Now()}
	r.s.entries[e.ID] = e
	r.s.byDay[k] = e.ID
	c := *e
	return &c, nil
}

func (r *memEntries) GetByID(ctx context.Context, id int64) (*models.HydrationEntry, error) {
	e, ok := r.s.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (r *memEntries) GetByDate(ctx context.Context, userID int64, date time.Time) (*models.HydrationEntry, error) {
	id, ok := r.s.byDay[entryKey{userID, timex.DateOf(date)}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memEntries) Delete(ctx context.Context, id int64) error {
	e, ok := r.s.entries[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.s.byDay, entryKey{e.UserID, e.Date})
	delete(r.s.entries, id)
	return nil
}

func (r *memEntries) ListByUser(ctx context.Context, userID int64) ([]*models.HydrationEntry, error) {
	if r.s.entriesErr != nil {
		return nil, r.s.entriesErr
	}
	all := r.s.userEntries(userID)
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

func (r *memEntries) ListRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.HydrationEntry, error) {
	if r.s.entriesErr != nil {
		return nil, r.s.entriesErr
	}
	var out []*models.HydrationEntry
	for _, e := range r.s.userEntries(userID) {
		if !e.Date.Before(start) && !e.Date.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntries) ListAll(ctx context.Context, userID int64) ([]*models.HydrationEntry, error) {
	if r.s.entriesErr != nil {
		return nil, r.s.entriesErr
	}
	return r.s.userEntries(userID), nil
}

func (r *memEntries) Stats(ctx context.Context, userID int64) (int, int64, error) {
	if r.s.entriesErr != nil {
		return 0, 0, r.s.entriesErr
	}
	var total int64
	all := r.s.userEntries(userID)
	for _, e := range all {
		total += int64(e.Amount)
	}
	return len(all), total, nil
}

type memTokens struct {
	s         *memStore
	createErr error
	deleteErr error

	beforeDelete func()
}

func (r *memTokens) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.s.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (r *memTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (r *memTokens) Delete(ctx context.Context, token string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if r.beforeDelete != nil {
		r.beforeDelete()
	}
	if _, ok := r.s.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tokens, token)
	return nil
}

func (r *memTokens) DeleteByUser(ctx context.Context, userID int64) error {
	for tok, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, tok)
		}
	}
	return nil
}

// fakeRepoManager hands out the same in-memory repos whatever DBTX it gets.
type fakeRepoManager struct {
	s      *memStore
	tokens *memTokens
}

func newFakeRepoManager() *fakeRepoManager {
	s := newMemStore()
	return &fakeRepoManager{s: s, tokens: &memTokens{s: s}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return &memUsers{m.s} }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.tokens }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository                 { return &memEntries{m.s} }

// --- storage fakes ---

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStorage) Upload(ctx context.Context, key, contentType string, data io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *memStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type presigningStorage struct {
	*memStorage
}

func (s presigningStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://bucket.example/" + key + "?ttl=" + ttl.String(), nil
}
