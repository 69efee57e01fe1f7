package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"myflix/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// The mutex stands in for the per-document atomicity of a real store.
type MemoryUserRepository struct {
	users map[string]models.User // keyed by username
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("username %s: %w", user.Username, ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	r.users[user.Username] = cloneUser(*user)
	return nil
}

// GetAll returns all users ordered by username.
func (r *MemoryUserRepository) GetAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userList := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		userList = append(userList, cloneUser(u))
	}
	sort.Slice(userList, func(i, j int) bool { return userList[i].Username < userList[j].Username })
	return userList, nil
}

// GetByUsername returns a user by username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	u = cloneUser(u)
	return &u, nil
}

// Update replaces the account fields of an existing user.
func (r *MemoryUserRepository) Update(_ context.Context, username string, params UpdateUserParams) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if params.Username != username {
		if _, taken := r.users[params.Username]; taken {
			return nil, fmt.Errorf("username %s: %w", params.Username, ErrDuplicate)
		}
	}

	u.Username = params.Username
	u.PasswordHash = params.PasswordHash
	u.Email = params.Email
	u.Birthday = params.Birthday

	delete(r.users, username)
	r.users[u.Username] = u
	u = cloneUser(u)
	return &u, nil
}

// Delete removes a user by username.
func (r *MemoryUserRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	delete(r.users, username)
	return nil
}

// AddFavorite appends movieID to the user's favorites, keeping duplicates.
func (r *MemoryUserRepository) AddFavorite(_ context.Context, username, movieID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	u.FavoriteMovies = append(append([]string{}, u.FavoriteMovies...), movieID)
	r.users[username] = u
	u = cloneUser(u)
	return &u, nil
}

// RemoveFavorite removes every occurrence of movieID from the user's favorites.
func (r *MemoryUserRepository) RemoveFavorite(_ context.Context, username, movieID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	u.FavoriteMovies = removeAll(u.FavoriteMovies, movieID)
	r.users[username] = u
	u = cloneUser(u)
	return &u, nil
}

func cloneUser(u models.User) models.User {
	u.FavoriteMovies = append([]string{}, u.FavoriteMovies...)
	if u.Birthday != nil {
		b := *u.Birthday
		u.Birthday = &b
	}
	return u
}

func removeAll(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
