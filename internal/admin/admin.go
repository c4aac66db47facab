// Package admin implements the hydratr-admin command line: schema
// migrations and maintenance of accounts and their history.
package admin

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var stdinFd = func() int { return int(os.Stdin.Fd()) }

type Users interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	GetUserByName(ctx context.Context, userName string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

type Entries interface {
	LogAmount(ctx context.Context, userID int64, amount int, date time.Time) (*models.HydrationEntry, error)
	CurrentStreak(ctx context.Context, userID int64, today time.Time) (int, error)
}

type Reports interface {
	ExportJSON(ctx context.Context, userID int64) ([]hydration.ExportRow, error)
	ExportPDF(ctx context.Context, userID int64, req services.ReportRequest) (string, []byte, error)
}

// Context is bound to every command's Run method.
type Context struct {
	Ctx     context.Context
	Migrate func(ctx context.Context) error
	Users   Users
	Entries Entries
	Reports Reports
	Out     io.Writer
	Now     func() time.Time
}

// CLI is the kong grammar of hydratr-admin.
type CLI struct {
	DSN string `name:"dsn" help:"PostgreSQL DSN. Defaults to DATABASE_URL or the built-in development DSN."`

	Migrate MigrateCmd `cmd:"" help:"Apply pending schema migrations."`
	User    struct {
		Create UserCreateCmd `cmd:"" help:"Create an account."`
		Delete UserDeleteCmd `cmd:"" help:"Delete an account with all its entries."`
	} `cmd:"" help:"Manage accounts."`
	Log    LogCmd    `cmd:"" help:"Log an amount of water for a user."`
	Streak StreakCmd `cmd:"" help:"Show a user's current streak."`
	Export ExportCmd `cmd:"" help:"Export a user's history as PDF or JSON."`
}
