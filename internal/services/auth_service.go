package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	"myflix/internal/models"
	"myflix/internal/repositories"
)

// AuthService handles login, token issuance and token verification.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration // zero issues tokens without an exp claim
	now       func() time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Login authenticates a user and returns a token bound to their username.
// Unknown users and wrong passwords yield the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

// IssueToken signs an HS256 token carrying the user's identity.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.Username,
		"username": user.Username,
		"user_id":  user.ID,
		"iat":      now.Unix(),
	}
	if s.tokenTTL > 0 {
		claims["exp"] = now.Add(s.tokenTTL).Unix()
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken validates signature, structure and expiry, and returns the
// embedded identity. Every failure wraps ErrUnauthorized.
func (s *AuthService) VerifyToken(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token: %v", ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	username, _ := claims["username"].(string)
	if username == "" {
		return nil, fmt.Errorf("%w: token has no username claim", ErrUnauthorized)
	}
	userID, _ := claims["user_id"].(string)

	identity := &models.Identity{UserID: userID, Username: username}
	if iat, ok := claims["iat"].(float64); ok {
		identity.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt := time.Unix(int64(exp), 0)
		identity.ExpiresAt = &expiresAt
	}
	return identity, nil
}
