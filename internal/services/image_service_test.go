package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"myflix/internal/imaging"
	"myflix/internal/services"
	"myflix/pkg/objectstore"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestImageService_UploadAndDownload(t *testing.T) {
	store := objectstore.NewMemoryStore("myflix-images")
	logger := zerolog.Nop()
	imageService := services.NewImageService(store, nil, &logger)
	ctx := context.Background()

	data := pngBytes(t)
	key, err := imageService.Upload(ctx, "../../etc/cat.png", data)
	require.NoError(t, err)
	assert.Equal(t, "original-images/cat.png", key)

	keys, err := imageService.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"original-images/cat.png"}, keys)

	obj, err := imageService.Download(ctx, "cat.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	got, _ := io.ReadAll(obj.Body)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = imageService.DownloadResized(ctx, "cat.png")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestImageService_UploadRejectsNonImages(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	logger := zerolog.Nop()
	imageService := services.NewImageService(store, nil, &logger)

	_, err := imageService.Upload(context.Background(), "cat.png", []byte("plain text pretending"))
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")

	_, err = imageService.Upload(context.Background(), "", pngBytes(t))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "filename")
}

func TestImageService_UploadPublishesEvent(t *testing.T) {
	store := objectstore.NewMemoryStore("myflix-images")
	logger := zerolog.Nop()
	publisher := new(MockPublisher)
	imageService := services.NewImageService(store, publisher, &logger)

	var published []byte
	publisher.On("Publish", mock.Anything).Run(func(args mock.Arguments) {
		published = args.Get(0).([]byte)
	}).Return(nil).Once()

	_, err := imageService.Upload(context.Background(), "dog.png", pngBytes(t))
	require.NoError(t, err)
	publisher.AssertExpectations(t)

	evt, err := imaging.ParseEvent(published)
	require.NoError(t, err)
	assert.Equal(t, "myflix-images", evt.Records[0].S3.Bucket.Name)
	key, err := evt.Records[0].Key()
	require.NoError(t, err)
	assert.Equal(t, "original-images/dog.png", key)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(published, &raw))
	assert.Contains(t, raw, "Records")
}

func TestImageService_PublishFailureKeepsUpload(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	logger := zerolog.Nop()
	publisher := new(MockPublisher)
	imageService := services.NewImageService(store, publisher, &logger)

	publisher.On("Publish", mock.Anything).Return(errors.New("broker down")).Once()

	key, err := imageService.Upload(context.Background(), "dog.png", pngBytes(t))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), key)
	assert.NoError(t, err)
}
