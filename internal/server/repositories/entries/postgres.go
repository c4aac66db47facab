// Package entries provides the PostgreSQL-backed store of daily hydration
// entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/common"
	"github.com/dmitrijs2005/hydratr/internal/dbx"
	"github.com/dmitrijs2005/hydratr/internal/server/models"
	"github.com/dmitrijs2005/hydratr/internal/timex"
)

const entryColumns = `id, user_id, amount, date, created_at`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddAmount is a single upsert: concurrent logs for the same day are
// serialized by the unique (user_id, date) key and none is lost.
func (r *PostgresRepository) AddAmount(ctx context.Context, userID int64, date time.Time, amount int) (*models.HydrationEntry, error) {
	query := `
		INSERT INTO hydration_entries (user_id, amount, date)
		VALUES ($1, $2, $3::date)
		ON CONFLICT (user_id, date)
		DO UPDATE SET amount = hydration_entries.amount + EXCLUDED.amount
		RETURNING ` + entryColumns

	row := r.db.QueryRowContext(ctx, query, userID, amount, timex.FormatDate(date))
	entry, err := scanEntry(row)
	if err != nil {
		if dbx.IsNumericOutOfRange(err) {
			return nil, fmt.Errorf("%w: daily total cannot exceed %d ml", common.ErrorValidation, models.MaxAmount)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.HydrationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM hydration_entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByDate(ctx context.Context, userID int64, date time.Time) (*models.HydrationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM hydration_entries WHERE user_id = $1 AND date = $2::date`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, timex.FormatDate(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// Delete removes the entry permanently. A missing row yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hydration_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.HydrationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM hydration_entries WHERE user_id = $1 ORDER BY date DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.HydrationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM hydration_entries
		WHERE user_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date ASC`
	return r.list(ctx, query, userID, timex.FormatDate(start), timex.FormatDate(end))
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID int64) ([]*models.HydrationEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM hydration_entries WHERE user_id = $1 ORDER BY date ASC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) Stats(ctx context.Context, userID int64) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM hydration_entries WHERE user_id = $1`

	var days int
	var total int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&days, &total); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return days, total, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.HydrationEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.HydrationEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.HydrationEntry, error) {
	var e models.HydrationEntry
	if err := s.Scan(&e.ID, &e.UserID, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Date = timex.DateOf(e.Date)
	return &e, nil
}
