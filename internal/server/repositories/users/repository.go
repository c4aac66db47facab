package users

import (
	"context"

	"github.com/dmitrijs2005/hydratr/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills in ID and CreatedAt. A taken
	// username or email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, dailyGoal int, theme models.Theme) error
	UpdateProfilePicture(ctx context.Context, id int64, key string) error
	// Delete removes the user; entries and refresh tokens go with it.
	Delete(ctx context.Context, id int64) error
}
