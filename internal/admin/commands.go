package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/filex"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/server/services"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.Migrate(ctx.Ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Fprintln(ctx.Out, "Migrations applied")
	return nil
}

type UserCreateCmd struct {
	Username string `arg:"" help:"Login name."`
	Email    string `arg:"" help:"E-mail address."`
	Password string `help:"Password. Prompted for when omitted." env:"HYDRATR_ADMIN_PASSWORD"`
}

func (c *UserCreateCmd) Run(ctx *Context) error {
	password := c.Password
	if password == "" {
		pw, err := promptPassword(ctx.Out)
		if err != nil {
			return err
		}
		password = string(pw)
		common.WipeByteArray(pw)
	}

	u, err := ctx.Users.Register(ctx.Ctx, c.Username, c.Email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Created user %s (id %d, goal %d ml)\n", u.UserName, u.ID, u.DailyGoal)
	return nil
}

func promptPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("error reading password: %w", err)
	}
	return pw, nil
}

type UserDeleteCmd struct {
	Username string `arg:"" help:"Login name."`
	Yes      bool   `help:"Confirm the deletion."`
}

func (c *UserDeleteCmd) Run(ctx *Context) error {
	if !c.Yes {
		return errors.New("refusing to delete without --yes")
	}
	u, err := ctx.Users.GetUserByName(ctx.Ctx, c.Username)
	if err != nil {
		return fmt.Errorf("user %q: %w", c.Username, err)
	}
	if err := ctx.Users.DeleteAccount(ctx.Ctx, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted user %s\n", u.UserName)
	return nil
}

type LogCmd struct {
	Username string `arg:"" help:"Login name."`
	Amount   int    `arg:"" help:"Amount in ml."`
	Date     string `help:"Day to log (YYYY-MM-DD). Today when empty."`
}

func (c *LogCmd) Run(ctx *Context) error {
	day := ctx.Now()
	if c.Date != "" {
		d, err := timex.ParseDate(c.Date)
		if err != nil {
			return err
		}
		day = d
	}

	u, err := ctx.Users.GetUserByName(ctx.Ctx, c.Username)
	if err != nil {
		return fmt.Errorf("user %q: %w", c.Username, err)
	}
	e, err := ctx.Entries.LogAmount(ctx.Ctx, u.ID, c.Amount, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s: %d ml\n", timex.FormatDate(e.Date), e.Amount)
	return nil
}

type StreakCmd struct {
	Username string `arg:"" help:"Login name."`
}

func (c *StreakCmd) Run(ctx *Context) error {
	u, err := ctx.Users.GetUserByName(ctx.Ctx, c.Username)
	if err != nil {
		return fmt.Errorf("user %q: %w", c.Username, err)
	}
	n, err := ctx.Entries.CurrentStreak(ctx.Ctx, u.ID, ctx.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s: %d day(s)\n", u.UserName, n)
	return nil
}

type ExportCmd struct {
	Username  string `arg:"" help:"Login name."`
	Format    string `enum:"pdf,json" default:"pdf" help:"Output format (pdf or json)."`
	From      string `help:"First day of the report (YYYY-MM-DD)."`
	To        string `help:"Last day of the report (YYYY-MM-DD)."`
	NoCharts  bool   `help:"Leave the chart out of the PDF."`
	NoStats   bool   `help:"Leave the summary out of the PDF."`
	NoDetails bool   `help:"Leave the daily table out of the PDF."`
	Output    string `short:"o" default:"." help:"Output file or directory."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	u, err := ctx.Users.GetUserByName(ctx.Ctx, c.Username)
	if err != nil {
		return fmt.Errorf("user %q: %w", c.Username, err)
	}

	var name string
	var data []byte
	if c.Format == "json" {
		name, data, err = c.exportJSON(ctx, u)
	} else {
		name, data, err = ctx.Reports.ExportPDF(ctx.Ctx, u.ID, services.ReportRequest{
			StartDate:      c.From,
			EndDate:        c.To,
			IncludeCharts:  !c.NoCharts,
			IncludeStats:   !c.NoStats,
			IncludeDetails: !c.NoDetails,
		})
	}
	if err != nil {
		return err
	}

	path := outputPath(c.Output, name)
	if err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	fmt.Fprintf(ctx.Out, "Wrote %s\n", path)
	return nil
}

func (c *ExportCmd) exportJSON(ctx *Context, u *models.User) (string, []byte, error) {
	rows, err := ctx.Reports.ExportJSON(ctx.Ctx, u.ID)
	if err != nil {
		return "", nil, err
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("hydration_data_%s.json", ctx.Now().Format("20060102"))
	return name, data, nil
}

// outputPath puts name inside out when out is a directory.
func outputPath(out, name string) string {
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		return filepath.Join(out, name)
	}
	if strings.HasSuffix(out, string(os.PathSeparator)) {
		return filepath.Join(out, name)
	}
	return out
}
