// Package imaging implements the object-created resize pipeline: images
// landing under OriginalPrefix are scaled to fit 300x300 and written under
// ResizedPrefix with the same name and content type.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"myflix/pkg/objectstore"
)

const (
	OriginalPrefix = "original-images/"
	ResizedPrefix  = "resized-images/"
)

type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome of processing one key.
type Result struct {
	Key       string `json:"key"`
	OutputKey string `json:"outputKey,omitempty"`
	Status    Status `json:"status"`
	Code      int    `json:"code"`
	Message   string `json:"message,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Failed reports whether the result should be retried by the event source.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// OutputKey maps an original key to its resized counterpart.
func OutputKey(key string) string {
	return ResizedPrefix + path.Base(key)
}

// Processor runs the pipeline against one object store.
type Processor struct {
	store  objectstore.Store
	logger *zerolog.Logger
}

func NewProcessor(store objectstore.Store, logger *zerolog.Logger) *Processor {
	return &Processor{store: store, logger: logger}
}

// HandleEvent processes every record of evt and returns one result per
// record.
func (p *Processor) HandleEvent(ctx context.Context, evt *Event) []Result {
	results := make([]Result, 0, len(evt.Records))
	for _, rec := range evt.Records {
		if !rec.IsObjectCreated() {
			results = append(results, Result{
				Key:     rec.S3.Object.Key,
				Status:  StatusSkipped,
				Code:    http.StatusOK,
				Message: "ignored event " + rec.EventName,
			})
			continue
		}

		key, err := rec.Key()
		if err != nil {
			results = append(results, p.fail(Result{Key: rec.S3.Object.Key}, http.StatusBadRequest, err))
			continue
		}
		results = append(results, p.Process(ctx, key))
	}
	return results
}

// Process resizes a single object.
func (p *Processor) Process(ctx context.Context, key string) Result {
	res := Result{Key: key}

	if !strings.HasPrefix(key, OriginalPrefix) {
		res.Status = StatusSkipped
		res.Code = http.StatusOK
		res.Message = "key outside " + OriginalPrefix
		p.logger.Debug().Str("key", key).Msg("skipping object")
		return res
	}

	if strings.HasSuffix(key, "/") {
		res.Status = StatusSkipped
		res.Code = http.StatusOK
		res.Message = "folder marker"
		p.logger.Debug().Str("key", key).Msg("skipping folder marker")
		return res
	}

	obj, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return p.fail(res, http.StatusNotFound, err)
		}
		return p.fail(res, http.StatusInternalServerError, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return p.fail(res, http.StatusInternalServerError, err)
	}

	contentType := obj.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = DetectContentType(data)
	}
	if !Supported(contentType) {
		return p.fail(res, http.StatusUnsupportedMediaType, ErrUnsupportedType)
	}

	out, bounds, err := Transform(data, contentType)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return p.fail(res, http.StatusRequestEntityTooLarge, err)
		}
		return p.fail(res, http.StatusUnprocessableEntity, err)
	}

	res.OutputKey = OutputKey(key)
	if err := p.store.Put(ctx, res.OutputKey, contentType, bytes.NewReader(out), int64(len(out))); err != nil {
		return p.fail(res, http.StatusInternalServerError, err)
	}

	res.Status = StatusDone
	res.Code = http.StatusOK
	res.Width = bounds.Dx()
	res.Height = bounds.Dy()
	p.logger.Info().
		Str("key", key).
		Str("output", res.OutputKey).
		Int("width", res.Width).
		Int("height", res.Height).
		Msg("image resized")
	return res
}

func (p *Processor) fail(res Result, code int, err error) Result {
	res.Status = StatusFailed
	res.Code = code
	res.Message = err.Error()
	p.logger.Error().Err(err).Str("key", res.Key).Int("code", code).Msg("image processing failed")
	return res
}

// Handle runs evt against store without logging.
func Handle(ctx context.Context, store objectstore.Store, evt *Event) []Result {
	nop := zerolog.Nop()
	return NewProcessor(store, &nop).HandleEvent(ctx, evt)
}
