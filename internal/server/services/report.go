package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/hydration"
	"github.com/dmitrijs2005/hydratr/internal/server/repositories/repomanager"
)

// Renderer turns a report payload into a document.
type Renderer interface {
	Render(r *hydration.Report) ([]byte, error)
}

// ReportRequest is a PDF export request as received from a client. Dates
// are YYYY-MM-DD; missing or malformed dates fall back to the trailing
// thirty days.
type ReportRequest struct {
	StartDate      string
	EndDate        string
	IncludeCharts  bool
	IncludeStats   bool
	IncludeDetails bool
}

// ReportService exports a user's history as JSON rows or a rendered PDF.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	renderer    Renderer
	now         func() time.Time
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, renderer Renderer) *ReportService {
	return &ReportService{db: db, repomanager: m, renderer: renderer, now: time.Now}
}

// ExportJSON returns the whole history, oldest first, with the current goal.
func (s *ReportService) ExportJSON(ctx context.Context, userID int64) ([]hydration.ExportRow, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repomanager.Entries(s.db).ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return hydration.ExportRows(entries, user.DailyGoal), nil
}

// BuildReport resolves the requested range and assembles the payload.
func (s *ReportService) BuildReport(ctx context.Context, userID int64, req ReportRequest) (*hydration.Report, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	opts := hydration.ReportOptions{
		IncludeCharts:  req.IncludeCharts,
		IncludeStats:   req.IncludeStats,
		IncludeDetails: req.IncludeDetails,
		Range:          hydration.ResolveRange(req.StartDate, req.EndDate, now),
	}

	entries, err := s.repomanager.Entries(s.db).ListRange(ctx, userID, opts.Range.Start, opts.Range.End)
	if err != nil {
		return nil, err
	}
	return hydration.BuildReport(entries, user, opts, now), nil
}

// ExportPDF renders the report and names the file after today's date.
func (s *ReportService) ExportPDF(ctx context.Context, userID int64, req ReportRequest) (string, []byte, error) {
	report, err := s.BuildReport(ctx, userID, req)
	if err != nil {
		return "", nil, err
	}
	data, err := s.renderer.Render(report)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering report: %w", err)
	}
	return hydration.ReportFilename(report.Header.GeneratedAt), data, nil
}
