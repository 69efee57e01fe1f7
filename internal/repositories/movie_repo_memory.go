package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"myflix/internal/models"
)

// MemoryMovieRepository is an in-memory implementation of MovieRepository.
// Movies are kept in insertion order so find-one lookups are deterministic.
type MemoryMovieRepository struct {
	movies []models.Movie
	mu     sync.RWMutex
}

// NewMemoryMovieRepository creates a new instance of MemoryMovieRepository.
func NewMemoryMovieRepository() *MemoryMovieRepository {
	return &MemoryMovieRepository{}
}

// Create adds a new movie.
func (r *MemoryMovieRepository) Create(_ context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movie.ID == "" {
		movie.ID = uuid.New().String()
	}
	for _, m := range r.movies {
		if m.ID == movie.ID {
			return fmt.Errorf("movie %s: %w", movie.ID, ErrDuplicate)
		}
	}
	r.movies = append(r.movies, *movie)
	return nil
}

// GetAll returns all movies.
func (r *MemoryMovieRepository) GetAll(_ context.Context) ([]models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Movie{}, r.movies...), nil
}

// FindOneByTitle returns the first movie with the given title.
func (r *MemoryMovieRepository) FindOneByTitle(_ context.Context, title string) (*models.Movie, error) {
	return r.findOne("title", title, func(m models.Movie) bool { return m.Title == title })
}

// FindOneByGenreName returns the first movie of the given genre.
func (r *MemoryMovieRepository) FindOneByGenreName(_ context.Context, name string) (*models.Movie, error) {
	return r.findOne("genre", name, func(m models.Movie) bool { return m.Genre.Name == name })
}

// FindOneByDirectorName returns the first movie by the given director.
func (r *MemoryMovieRepository) FindOneByDirectorName(_ context.Context, name string) (*models.Movie, error) {
	return r.findOne("director", name, func(m models.Movie) bool { return m.Director.Name == name })
}

func (r *MemoryMovieRepository) findOne(field, value string, match func(models.Movie) bool) (*models.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.movies {
		if match(m) {
			found := m
			return &found, nil
		}
	}
	return nil, fmt.Errorf("movie with %s %s: %w", field, value, ErrNotFound)
}
