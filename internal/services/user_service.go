package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"myflix/internal/models"
	"myflix/internal/repositories"
)

// UserInput is the payload for registration and for full-replace updates.
type UserInput struct {
	Username string `json:"Username" form:"Username" validate:"required,min=5,alphanum"`
	Password string `json:"Password" form:"Password" validate:"required,max=72"`
	Email    string `json:"Email" form:"Email" validate:"required,email"`
	Birthday string `json:"Birthday" form:"Birthday" validate:"omitempty,birthday"`
}

// UserService implements the user directory operations.
type UserService struct {
	repo     repositories.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo:     repo,
		validate: newValidator(),
	}
}

// Register validates the input, rejects taken usernames and stores a new
// user with a hashed password.
//
// The existence check and the insert are separate store calls; the store's
// unique index decides concurrent registrations, and its rejection is also
// reported as ErrConflict.
func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	birthday, _ := parseBirthday(in.Birthday)

	_, err := s.repo.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s %w", in.Username, ErrConflict)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       in.Username,
		PasswordHash:   hash,
		Email:          in.Email,
		Birthday:       birthday,
		FavoriteMovies: []string{},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateStoreError(err, in.Username)
	}
	return user, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return users, nil
}

// Get returns the user with the given username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, translateStoreError(err, "user "+username)
	}
	return user, nil
}

// Update replaces Username, password, Email and Birthday of username. Only
// the account owner may update it. Favorites are left untouched.
func (s *UserService) Update(ctx context.Context, username string, in UserInput, caller models.Identity) (*models.User, error) {
	if caller.Username != username {
		return nil, fmt.Errorf("%w: cannot modify another user's account", ErrForbidden)
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	birthday, _ := parseBirthday(in.Birthday)

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, username, repositories.UpdateUserParams{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		Birthday:     birthday,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, translateStoreError(err, in.Username)
		}
		return nil, translateStoreError(err, "user "+username)
	}
	return user, nil
}

// Delete removes the user and returns a confirmation message.
func (s *UserService) Delete(ctx context.Context, username string) (string, error) {
	if err := s.repo.Delete(ctx, username); err != nil {
		return "", translateStoreError(err, "user "+username)
	}
	return username + " was deleted.", nil
}

// AddFavorite appends movieID to the user's favorites. The list is not a
// set: adding the same movie twice stores it twice.
func (s *UserService) AddFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if movieID == "" {
		return nil, newValidationError("MovieID", "is required")
	}
	user, err := s.repo.AddFavorite(ctx, username, movieID)
	if err != nil {
		return nil, translateStoreError(err, "user "+username)
	}
	return user, nil
}

// RemoveFavorite removes every occurrence of movieID. Removing a movie that
// is not in the list succeeds and leaves the list unchanged.
func (s *UserService) RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if movieID == "" {
		return nil, newValidationError("MovieID", "is required")
	}
	user, err := s.repo.RemoveFavorite(ctx, username, movieID)
	if err != nil {
		return nil, translateStoreError(err, "user "+username)
	}
	return user, nil
}
