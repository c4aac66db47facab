package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/dmitrijs2005/hydratr/internal/server/auth"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type fakeUsers struct {
	registerFn func(username, email, password string) (*models.User, error)
	loginFn    func(username, password string) (*services.TokenPair, error)
	refreshFn  func(token string) (*services.TokenPair, error)
	logoutFn   func(token string) error
	user       *models.User
	getErr     error
	updated    services.ProfileUpdate
	theme      models.Theme
	themeErr   error
	uploaded   string
	uploadBody string
	uploadErr  error
	picture    *services.Picture
	pictureErr error
	deleted    int64
	deleteErr  error
}

func (f *fakeUsers) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return f.registerFn(username, email, password)
}

func (f *fakeUsers) Login(ctx context.Context, userName, password string) (*services.TokenPair, error) {
	return f.loginFn(userName, password)
}

func (f *fakeUsers) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshFn(refreshToken)
}

func (f *fakeUsers) Logout(ctx context.Context, refreshToken string) error {
	return f.logoutFn(refreshToken)
}

func (f *fakeUsers) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID int64, upd services.ProfileUpdate) (*models.User, error) {
	f.updated = upd
	u := *f.user
	if upd.DailyGoal > 0 {
		u.DailyGoal = upd.DailyGoal
	}
	if upd.Theme.Valid() {
		u.Theme = upd.Theme
	}
	return &u, nil
}

func (f *fakeUsers) UpdateTheme(ctx context.Context, userID int64, theme models.Theme) error {
	f.theme = theme
	return f.themeErr
}

func (f *fakeUsers) UploadProfilePicture(ctx context.Context, userID int64, filename string, data io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	b, _ := io.ReadAll(data)
	f.uploaded, f.uploadBody = filename, string(b)
	return "profile_pictures/1/abc.png", nil
}

func (f *fakeUsers) ProfilePicture(ctx context.Context, userID int64) (*services.Picture, error) {
	return f.picture, f.pictureErr
}

func (f *fakeUsers) DeleteAccount(ctx context.Context, userID int64) error {
	f.deleted = userID
	return f.deleteErr
}

type fakeEntries struct {
	logged     []int
	logErr     error
	deleteErr  error
	deletedID  int64
	deletedBy  int64
	streak     int
	period     string
	history    []hydration.HistoryItem
	seriesFrom time.Time
	seriesTo   time.Time
	dashboard  *services.Dashboard
	stats      *services.ProfileStats
	err        error
}

func (f *fakeEntries) LogAmount(ctx context.Context, userID int64, amount int, date time.Time) (*models.HydrationEntry, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	f.logged = append(f.logged, amount)
	return &models.HydrationEntry{ID: 7, UserID: userID, Amount: amount, Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeEntries) DeleteEntry(ctx context.Context, entryID, requestingUserID int64) error {
	f.deletedID, f.deletedBy = entryID, requestingUserID
	return f.deleteErr
}

func (f *fakeEntries) CurrentStreak(ctx context.Context, userID int64, today time.Time) (int, error) {
	return f.streak, f.err
}

func (f *fakeEntries) WindowSeries(ctx context.Context, userID int64, start, end time.Time) ([]hydration.SeriesPoint, error) {
	f.seriesFrom, f.seriesTo = start, end
	return hydration.WindowSeries(nil, 2000, start, end), f.err
}

func (f *fakeEntries) History(ctx context.Context, userID int64, period string, today time.Time) ([]hydration.HistoryItem, error) {
	f.period = period
	return f.history, f.err
}

func (f *fakeEntries) Dashboard(ctx context.Context, userID int64, today time.Time) (*services.Dashboard, error) {
	return f.dashboard, f.err
}

func (f *fakeEntries) ProfileStats(ctx context.Context, userID int64) (*services.ProfileStats, error) {
	return f.stats, f.err
}

type fakeReports struct {
	rows []hydration.ExportRow
	req  services.ReportRequest
	err  error
}

func (f *fakeReports) ExportJSON(ctx context.Context, userID int64) ([]hydration.ExportRow, error) {
	return f.rows, f.err
}

func (f *fakeReports) ExportPDF(ctx context.Context, userID int64, req services.ReportRequest) (string, []byte, error) {
	f.req = req
	if f.err != nil {
		return "", nil, f.err
	}
	return "hydration_report_20261019.pdf", []byte("%PDF-1.3 fake"), nil
}

type testEnv struct {
	users   *fakeUsers
	entries *fakeEntries
	reports *fakeReports
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret

	env := &testEnv{
		users:   &fakeUsers{user: &models.User{ID: 1, UserName: "alice", Email: "alice@example.com", DailyGoal: 2000, Theme: models.ThemeLight}},
		entries: &fakeEntries{},
		reports: &fakeReports{},
	}
	h := NewHandler(cfg, logging.Nop(), env.users, env.entries, env.reports)
	h.now = func() time.Time { return fixedNow }
	env.router = h.NewRouter(nil)
	return env
}

func accessToken(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return tok
}

// do sends an authenticated request for user 1 unless token is "-".
func (e *testEnv) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken(t, 1))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doAnon(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
