package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/services"
)

// MovieHandler handles read-only HTTP requests for movies.
type MovieHandler struct {
	service *services.MovieService
	logger  *zerolog.Logger
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(service *services.MovieService, logger *zerolog.Logger) *MovieHandler {
	return &MovieHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the movie routes, all behind authRequired.
func (h *MovieHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	movies := router.Group("/movies")
	movies.Get("/", authRequired, h.HandleGetMovies)
	movies.Get("/Genre/:genreName", authRequired, h.HandleGetByGenre)
	movies.Get("/director/:directorName", authRequired, h.HandleGetByDirector)
	movies.Get("/:Title", authRequired, h.HandleGetByTitle)
}

// HandleGetMovies lists every movie.
func (h *MovieHandler) HandleGetMovies(c *fiber.Ctx) error {
	movies, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(movies)
}

// HandleGetByTitle returns the first movie with the title.
func (h *MovieHandler) HandleGetByTitle(c *fiber.Ctx) error {
	movie, err := h.service.FindByTitle(c.UserContext(), c.Params("Title"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(movie)
}

// HandleGetByGenre returns the first movie of the genre.
func (h *MovieHandler) HandleGetByGenre(c *fiber.Ctx) error {
	movie, err := h.service.FindByGenreName(c.UserContext(), c.Params("genreName"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(movie)
}

// HandleGetByDirector returns the first movie by the director.
func (h *MovieHandler) HandleGetByDirector(c *fiber.Ctx) error {
	movie, err := h.service.FindByDirectorName(c.UserContext(), c.Params("directorName"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(movie)
}
