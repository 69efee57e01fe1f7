package handlers

import (
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"myflix/internal/services"
	"myflix/pkg/objectstore"
)

const imageFormField = "image"

// ImageHandler handles uploads and downloads of movie images.
type ImageHandler struct {
	service *services.ImageService
	logger  *zerolog.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(service *services.ImageService, logger *zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the image routes, all behind authRequired.
func (h *ImageHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	images := router.Group("/images")
	images.Get("/", authRequired, h.HandleListImages)
	images.Post("/", authRequired, h.HandleUploadImage)
	images.Get("/resized/:filename", authRequired, h.HandleDownloadResized)
	images.Get("/:filename", authRequired, h.HandleDownloadImage)
}

// HandleListImages lists the uploaded originals.
func (h *ImageHandler) HandleListImages(c *fiber.Ctx) error {
	keys, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(keys)
}

// HandleUploadImage stores the multipart "image" file.
func (h *ImageHandler) HandleUploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile(imageFormField)
	if err != nil {
		return badRequest(c, "multipart field 'image' is required")
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, h.logger, fmt.Errorf("failed to open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, h.logger, fmt.Errorf("failed to read upload: %w", err))
	}

	key, err := h.service.Upload(c.UserContext(), file.Filename, data)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key})
}

// HandleDownloadImage streams an original image.
func (h *ImageHandler) HandleDownloadImage(c *fiber.Ctx) error {
	obj, err := h.service.Download(c.UserContext(), c.Params("filename"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendObject(c, obj)
}

// HandleDownloadResized streams a resized image.
func (h *ImageHandler) HandleDownloadResized(c *fiber.Ctx) error {
	obj, err := h.service.DownloadResized(c.UserContext(), c.Params("filename"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendObject(c, obj)
}

// sendObject hands the body to fasthttp, which closes it once sent. A
// non-positive Size means the backend reported no length.
func sendObject(c *fiber.Ctx, obj *objectstore.Object) error {
	if obj.ContentType != "" {
		c.Set(fiber.HeaderContentType, obj.ContentType)
	}
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{
		"filename": path.Base(obj.Key),
	}))
	size := int(obj.Size)
	if size <= 0 {
		size = -1 // unknown length, stream until EOF
	}
	return c.SendStream(obj.Body, size)
}
