// Package httpapi exposes the Hydratr services as a JSON API over gin.
package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/logging"
	"github.com/dmitrijs2005/hydratr/internal/server/config"
	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

// Users is the account surface the handlers need.
type Users interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd services.ProfileUpdate) (*models.User, error)
	UpdateTheme(ctx context.Context, userID int64, theme models.Theme) error
	UploadProfilePicture(ctx context.Context, userID int64, filename string, data io.Reader) (string, error)
	ProfilePicture(ctx context.Context, userID int64) (*services.Picture, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// Entries is the intake tracking surface the handlers need.
type Entries interface {
	LogAmount(ctx context.Context, userID int64, amount int, date time.Time) (*models.HydrationEntry, error)
	DeleteEntry(ctx context.Context, entryID, requestingUserID int64) error
	CurrentStreak(ctx context.Context, userID int64, today time.Time) (int, error)
	WindowSeries(ctx context.Context, userID int64, start, end time.Time) ([]hydration.SeriesPoint, error)
	History(ctx context.Context, userID int64, period string, today time.Time) ([]hydration.HistoryItem, error)
	Dashboard(ctx context.Context, userID int64, today time.Time) (*services.Dashboard, error)
	ProfileStats(ctx context.Context, userID int64) (*services.ProfileStats, error)
}

// Reports is the export surface the handlers need.
type Reports interface {
	ExportJSON(ctx context.Context, userID int64) ([]hydration.ExportRow, error)
	ExportPDF(ctx context.Context, userID int64, req services.ReportRequest) (string, []byte, error)
}

type Handler struct {
	users   Users
	entries Entries
	reports Reports
	log     logging.Logger

	jwtSecret     []byte
	secureCookies bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewHandler(cfg *config.Config, log logging.Logger, us Users, es Entries, rs Reports) *Handler {
	return &Handler{
		users:         us,
		entries:       es,
		reports:       rs,
		log:           log.With("module", "http"),
		jwtSecret:     []byte(cfg.SecretKey),
		secureCookies: cfg.SecureCookies,
		accessTTL:     cfg.AccessTokenValidityDuration,
		refreshTTL:    cfg.RefreshTokenValidityDuration,
		now:           time.Now,
	}
}

func (h *Handler) today() time.Time {
	return timex.DateOf(h.now())
}

type userResponse struct {
	ID             int64     `json:"id"`
	UserName       string    `json:"username"`
	Email          string    `json:"email"`
	DailyGoal      int       `json:"daily_goal"`
	Theme          string    `json:"theme"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		UserName:       u.UserName,
		Email:          u.Email,
		DailyGoal:      u.DailyGoal,
		Theme:          string(u.Theme),
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

type entryResponse struct {
	ID        int64     `json:"id"`
	Amount    int       `json:"amount"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

func newEntryResponse(e *models.HydrationEntry) entryResponse {
	return entryResponse{ID: e.ID, Amount: e.Amount, Date: timex.FormatDate(e.Date), CreatedAt: e.CreatedAt}
}

func newEntryResponses(es []*models.HydrationEntry) []entryResponse {
	out := make([]entryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, newEntryResponse(e))
	}
	return out
}

type pointResponse struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Amount int    `json:"amount"`
	Goal   int    `json:"goal"`
}

type historyResponse struct {
	Date    string `json:"date"`
	Amount  int    `json:"amount"`
	Goal    int    `json:"goal"`
	MetGoal bool   `json:"met_goal"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
