package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/login", h.HandleLogin)
}

// LoginRequest carries credentials in the JSON body or the query string.
type LoginRequest struct {
	Username string `json:"Username" query:"Username" form:"Username"`
	Password string `json:"Password" query:"Password" form:"Password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if req.Username == "" && req.Password == "" {
		if err := c.QueryParser(&req); err != nil {
			return badRequest(c, "Invalid query string")
		}
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and Password are required")
	}

	res, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.logger.Info().Str("username", req.Username).Err(err).Msg("login failed")
		return respondError(c, h.logger, err)
	}

	return c.JSON(res)
}
