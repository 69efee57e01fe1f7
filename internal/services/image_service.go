package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"myflix/internal/imaging"
	"myflix/pkg/objectstore"
)

// EventPublisher forwards object-created events to the resizer.
type EventPublisher interface {
	Publish(body []byte) error
}

// ImageService manages the original and resized image namespaces.
type ImageService struct {
	store     objectstore.Store
	publisher EventPublisher
	logger    *zerolog.Logger
}

// NewImageService creates a new ImageService. publisher may be nil, in which
// case the resizer relies on bucket notifications.
func NewImageService(store objectstore.Store, publisher EventPublisher, logger *zerolog.Logger) *ImageService {
	return &ImageService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns the keys stored under the original-images namespace.
func (s *ImageService) List(ctx context.Context) ([]string, error) {
	objects, err := s.store.List(ctx, imaging.OriginalPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Upload stores data as original-images/<filename>. Only JPEG, PNG and GIF
// content is accepted, regardless of the name's extension.
func (s *ImageService) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	contentType := imaging.DetectContentType(data)
	if !imaging.Supported(contentType) {
		return "", newValidationError("image", "must be a JPEG, PNG or GIF image")
	}

	key := imaging.OriginalPrefix + name
	if err := s.store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	s.logger.Info().Str("key", key).Str("content_type", contentType).Int("bytes", len(data)).Msg("image uploaded")

	if s.publisher != nil {
		s.publishCreated(key, int64(len(data)))
	}
	return key, nil
}

// Download opens original-images/<filename>. The caller must close Body.
func (s *ImageService) Download(ctx context.Context, filename string) (*objectstore.Object, error) {
	return s.get(ctx, imaging.OriginalPrefix, filename)
}

// DownloadResized opens resized-images/<filename>. The caller must close Body.
func (s *ImageService) DownloadResized(ctx context.Context, filename string) (*objectstore.Object, error) {
	return s.get(ctx, imaging.ResizedPrefix, filename)
}

func (s *ImageService) get(ctx context.Context, prefix, filename string) (*objectstore.Object, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return nil, err
	}

	obj, err := s.store.Get(ctx, prefix+name)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, fmt.Errorf("image %s %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return obj, nil
}

// publishCreated is best effort: the upload already succeeded.
func (s *ImageService) publishCreated(key string, size int64) {
	body, err := json.Marshal(imaging.NewObjectCreatedEvent(s.store.Bucket(), key, size))
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode image event")
		return
	}
	if err := s.publisher.Publish(body); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to publish image event")
	}
}

func cleanFilename(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", newValidationError("filename", "is required")
	}
	return name, nil
}
