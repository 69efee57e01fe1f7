package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/middleware"
	"myflix/internal/services"
)

// UserHandler handles HTTP requests for users and their favorites.
type UserHandler struct {
	service *services.UserService
	logger  *zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes. Registration is public, the
// rest go through authRequired.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Get("/", authRequired, h.HandleGetUsers)
	users.Get("/:Username", authRequired, h.HandleGetUser)
	users.Put("/:Username", authRequired, h.HandleUpdateUser)
	users.Delete("/:Username", authRequired, h.HandleDeleteUser)
	users.Post("/:Username/movies/:MovieID", authRequired, h.HandleAddFavorite)
	users.Delete("/:Username/movies/:MovieID", authRequired, h.HandleRemoveFavorite)
}

// HandleRegister creates a new account.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.Info().Str("username", user.Username).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUsers lists every user.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(users)
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("Username"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleUpdateUser replaces the caller's own account details.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "Authentication required")
	}

	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.service.Update(c.UserContext(), c.Params("Username"), in, *identity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser removes an account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	msg, err := h.service.Delete(c.UserContext(), c.Params("Username"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": msg})
}

// HandleAddFavorite appends a movie to the user's favorites.
func (h *UserHandler) HandleAddFavorite(c *fiber.Ctx) error {
	user, err := h.service.AddFavorite(c.UserContext(), c.Params("Username"), c.Params("MovieID"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}

// HandleRemoveFavorite removes a movie from the user's favorites.
func (h *UserHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	user, err := h.service.RemoveFavorite(c.UserContext(), c.Params("Username"), c.Params("MovieID"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(user)
}
