package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"myflix/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateGORMError(err, "failed to create user")
	}
	return nil
}

// GetAll retrieves all users from the database.
func (r *GORMUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translateGORMError(err, fmt.Sprintf("user %s", username))
	}
	return &user, nil
}

// Update replaces the account fields of a user inside a transaction.
func (r *GORMUserRepository) Update(ctx context.Context, username string, params UpdateUserParams) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&user, "username = ?", username).Error; err != nil {
			return translateGORMError(err, fmt.Sprintf("user %s", username))
		}
		user.Username = params.Username
		user.PasswordHash = params.PasswordHash
		user.Email = params.Email
		user.Birthday = params.Birthday
		if err := tx.Save(&user).Error; err != nil {
			return translateGORMError(err, fmt.Sprintf("failed to update user %s", username))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete deletes a user by username from the database.
func (r *GORMUserRepository) Delete(ctx context.Context, username string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "username = ?", username)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return nil
}

// AddFavorite appends movieID to the user's favorites under a row lock.
func (r *GORMUserRepository) AddFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	return r.mutateFavorites(ctx, username, func(ids []string) []string {
		return append(ids, movieID)
	})
}

// RemoveFavorite removes every occurrence of movieID under a row lock.
func (r *GORMUserRepository) RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	return r.mutateFavorites(ctx, username, func(ids []string) []string {
		return removeAll(ids, movieID)
	})
}

func (r *GORMUserRepository) mutateFavorites(ctx context.Context, username string, mutate func([]string) []string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&user, "username = ?", username).Error; err != nil {
			return translateGORMError(err, fmt.Sprintf("user %s", username))
		}
		user.FavoriteMovies = mutate(append([]string{}, user.FavoriteMovies...))
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update favorites of %s: %w", username, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
