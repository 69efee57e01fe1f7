package services

import (
	"context"
	"fmt"

	"myflix/internal/models"
	"myflix/internal/repositories"
)

// MovieService handles read-only movie queries.
//
// The FindBy methods keep find-one semantics: a genre or director shared by
// several movies still yields a single movie.
type MovieService struct {
	repo repositories.MovieRepository
}

// NewMovieService creates a new MovieService.
func NewMovieService(repo repositories.MovieRepository) *MovieService {
	return &MovieService{
		repo: repo,
	}
}

// List returns all movies.
func (s *MovieService) List(ctx context.Context) ([]models.Movie, error) {
	movies, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return movies, nil
}

// FindByTitle returns the first movie with the given title.
func (s *MovieService) FindByTitle(ctx context.Context, title string) (*models.Movie, error) {
	movie, err := s.repo.FindOneByTitle(ctx, title)
	if err != nil {
		return nil, translateStoreError(err, "movie "+title)
	}
	return movie, nil
}

// FindByGenreName returns the first movie of the named genre.
func (s *MovieService) FindByGenreName(ctx context.Context, name string) (*models.Movie, error) {
	movie, err := s.repo.FindOneByGenreName(ctx, name)
	if err != nil {
		return nil, translateStoreError(err, "genre "+name)
	}
	return movie, nil
}

// FindByDirectorName returns the first movie by the named director.
func (s *MovieService) FindByDirectorName(ctx context.Context, name string) (*models.Movie, error) {
	movie, err := s.repo.FindOneByDirectorName(ctx, name)
	if err != nil {
		return nil, translateStoreError(err, "director "+name)
	}
	return movie, nil
}
