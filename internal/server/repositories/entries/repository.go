package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
)

// Repository is the entry store. Dates passed in must be normalized with
// timex.DateOf; returned entries carry normalized dates as well.
type Repository interface {
	// AddAmount adds amount to the (userID, date) entry, creating it when
	// absent, and returns the resulting row.
	AddAmount(ctx context.Context, userID int64, date time.Time, amount int) (*models.HydrationEntry, error)
	// GetByID returns common.ErrorNotFound when no such entry exists.
	GetByID(ctx context.Context, id int64) (*models.HydrationEntry, error)
	// GetByDate returns common.ErrorNotFound when the user logged nothing that day.
	GetByDate(ctx context.Context, userID int64, date time.Time) (*models.HydrationEntry, error)
	Delete(ctx context.Context, id int64) error
	// ListByUser returns all entries of the user, newest date first.
	ListByUser(ctx context.Context, userID int64) ([]*models.HydrationEntry, error)
	// ListRange returns entries with start <= date <= end, oldest first.
	ListRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.HydrationEntry, error)
	// ListAll returns all entries of the user, oldest first.
	ListAll(ctx context.Context, userID int64) ([]*models.HydrationEntry, error)
	// Stats returns the number of logged days and the summed amount.
	Stats(ctx context.Context, userID int64) (days int, total int64, err error)
}
