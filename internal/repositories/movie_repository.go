package repositories

import (
	"context"

	"myflix/internal/models"
)

// MovieRepository defines the interface for movie data access.
//
// The FindOneBy methods return the first matching movie only, even when
// several movies share a genre or director.
type MovieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	GetAll(ctx context.Context) ([]models.Movie, error)
	FindOneByTitle(ctx context.Context, title string) (*models.Movie, error)
	FindOneByGenreName(ctx context.Context, name string) (*models.Movie, error)
	FindOneByDirectorName(ctx context.Context, name string) (*models.Movie, error)
}
