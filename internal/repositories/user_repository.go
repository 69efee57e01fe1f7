package repositories

import (
	"context"
	"time"

	"myflix/internal/models"
)

// UserRepository defines the interface for user data access.
//
// Every method is a single-document operation; AddFavorite and RemoveFavorite
// are atomic on the store side.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, username string, params UpdateUserParams) (*models.User, error)
	Delete(ctx context.Context, username string) error
	AddFavorite(ctx context.Context, username, movieID string) (*models.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error)
}

// UpdateUserParams replaces the account fields of a user. FavoriteMovies is
// never touched by an update.
type UpdateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	Birthday     *time.Time
}
