package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"myflix/internal/models"
)

// GORMMovieRepository is a GORM implementation of MovieRepository.
type GORMMovieRepository struct {
	db *gorm.DB
}

// NewGORMMovieRepository creates a new instance of GORMMovieRepository.
func NewGORMMovieRepository(db *gorm.DB) *GORMMovieRepository {
	return &GORMMovieRepository{
		db: db,
	}
}

// Create creates a new movie in the database.
func (r *GORMMovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	if movie.ID == "" {
		movie.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(movie).Error; err != nil {
		return translateGORMError(err, "failed to create movie")
	}
	return nil
}

// GetAll retrieves all movies from the database.
func (r *GORMMovieRepository) GetAll(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := r.db.WithContext(ctx).Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to get all movies: %w", err)
	}
	return movies, nil
}

// FindOneByTitle retrieves the first movie with the given title.
func (r *GORMMovieRepository) FindOneByTitle(ctx context.Context, title string) (*models.Movie, error) {
	return r.findOne(ctx, "title = ?", title)
}

// FindOneByGenreName retrieves the first movie of the given genre.
func (r *GORMMovieRepository) FindOneByGenreName(ctx context.Context, name string) (*models.Movie, error) {
	return r.findOne(ctx, "genre_name = ?", name)
}

// FindOneByDirectorName retrieves the first movie by the given director.
func (r *GORMMovieRepository) FindOneByDirectorName(ctx context.Context, name string) (*models.Movie, error) {
	return r.findOne(ctx, "director_name = ?", name)
}

func (r *GORMMovieRepository) findOne(ctx context.Context, query, value string) (*models.Movie, error) {
	var movie models.Movie
	// Take returns the first match in storage order; First would sort by key.
	if err := r.db.WithContext(ctx).Where(query, value).Take(&movie).Error; err != nil {
		return nil, translateGORMError(err, fmt.Sprintf("movie %s", value))
	}
	return &movie, nil
}
