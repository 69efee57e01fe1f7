package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myflix/pkg/objectstore"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encoded(t *testing.T, img image.Image, contentType string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch contentType {
	case ContentTypeJPEG:
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	case ContentTypePNG:
		require.NoError(t, png.Encode(&buf, img))
	case ContentTypeGIF:
		require.NoError(t, gif.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func put(t *testing.T, store objectstore.Store, key, contentType string, data []byte) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), key, contentType, bytes.NewReader(data), int64(len(data))))
}

func decodeStored(t *testing.T, store objectstore.Store, key string) (image.Config, string) {
	t.Helper()
	obj, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg, obj.ContentType
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"landscape", 1200, 600, 300, 150},
		{"portrait", 600, 1200, 150, 300},
		{"square", 900, 900, 300, 300},
		{"already small", 120, 80, 120, 80},
		{"exact box", 300, 300, 300, 300},
		{"thin strip", 3000, 2, 300, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, MaxWidth, MaxHeight)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestProcess_SkipsKeysOutsideOriginals(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, "other/x.png", ContentTypePNG, encoded(t, testImage(400, 400), ContentTypePNG))

	res := Handle(context.Background(), store, &Event{Records: []EventRecord{
		{EventName: objectCreatedPut, S3: S3Entity{Object: S3Object{Key: "other/x.png"}}},
	}})

	require.Len(t, res, 1)
	assert.Equal(t, StatusSkipped, res[0].Status)
	assert.Equal(t, http.StatusOK, res[0].Code)
	assert.Empty(t, res[0].OutputKey)

	objects, err := store.List(context.Background(), ResizedPrefix)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestProcess_ResizesJPEG(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, "original-images/cat.jpg", ContentTypeJPEG, encoded(t, testImage(800, 600), ContentTypeJPEG))

	evt := NewObjectCreatedEvent("b", "original-images/cat.jpg", 0)
	res := Handle(context.Background(), store, &evt)

	require.Len(t, res, 1)
	assert.Equal(t, StatusDone, res[0].Status)
	assert.Equal(t, "resized-images/cat.jpg", res[0].OutputKey)
	assert.Equal(t, 300, res[0].Width)
	assert.Equal(t, 225, res[0].Height)

	cfg, contentType := decodeStored(t, store, "resized-images/cat.jpg")
	assert.LessOrEqual(t, cfg.Width, MaxWidth)
	assert.LessOrEqual(t, cfg.Height, MaxHeight)
	assert.Equal(t, ContentTypeJPEG, contentType)
}

func TestProcess_FormatsKeepContentType(t *testing.T) {
	for _, ct := range []string{ContentTypePNG, ContentTypeGIF} {
		t.Run(ct, func(t *testing.T) {
			store := objectstore.NewMemoryStore("b")
			put(t, store, "original-images/pic", ct, encoded(t, testImage(640, 320), ct))

			res := Handle(context.Background(), store, &Event{Records: []EventRecord{
				{S3: S3Entity{Object: S3Object{Key: "original-images/pic"}}},
			}})
			require.Equal(t, StatusDone, res[0].Status)

			cfg, contentType := decodeStored(t, store, "resized-images/pic")
			assert.Equal(t, 300, cfg.Width)
			assert.Equal(t, 150, cfg.Height)
			assert.Equal(t, ct, contentType)
		})
	}
}

func TestProcess_DoesNotUpscale(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, "original-images/small.png", ContentTypePNG, encoded(t, testImage(100, 50), ContentTypePNG))

	evt := NewObjectCreatedEvent("b", "original-images/small.png", 0)
	res := Handle(context.Background(), store, &evt)

	require.Equal(t, StatusDone, res[0].Status)
	cfg, _ := decodeStored(t, store, "resized-images/small.png")
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestProcess_SniffsMissingContentType(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, "original-images/raw.png", "", encoded(t, testImage(600, 600), ContentTypePNG))

	evt := NewObjectCreatedEvent("b", "original-images/raw.png", 0)
	res := Handle(context.Background(), store, &evt)

	require.Equal(t, StatusDone, res[0].Status)
	_, contentType := decodeStored(t, store, "resized-images/raw.png")
	assert.Equal(t, ContentTypePNG, contentType)
}

func TestProcess_Failures(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, "original-images/notes.txt", "text/plain", []byte("not an image"))
	put(t, store, "original-images/broken.png", ContentTypePNG, []byte("\x89PNG garbage"))

	tests := []struct {
		key  string
		code int
	}{
		{"original-images/missing.jpg", http.StatusNotFound},
		{"original-images/notes.txt", http.StatusUnsupportedMediaType},
		{"original-images/broken.png", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			evt := NewObjectCreatedEvent("b", tt.key, 0)
			res := Handle(context.Background(), store, &evt)
			require.Len(t, res, 1)
			assert.True(t, res[0].Failed())
			assert.Equal(t, tt.code, res[0].Code)
			assert.NotEmpty(t, res[0].Message)
		})
	}
}

type failingStore struct {
	objectstore.Store
}

func (failingStore) Get(context.Context, string) (*objectstore.Object, error) {
	return nil, errors.New("connection reset")
}

func TestProcess_FetchErrorIsInternal(t *testing.T) {
	res := Handle(context.Background(), failingStore{}, &Event{Records: []EventRecord{
		{S3: S3Entity{Object: S3Object{Key: "original-images/a.jpg"}}},
	}})
	require.Len(t, res, 1)
	assert.Equal(t, StatusFailed, res[0].Status)
	assert.Equal(t, http.StatusInternalServerError, res[0].Code)
}

func TestEvent_RoundTripDecodesKey(t *testing.T) {
	evt := NewObjectCreatedEvent("myflix", "original-images/my cat+1.jpg", 42)
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"key":"original-images/my+cat%2B1.jpg"`)

	parsed, err := ParseEvent(body)
	require.NoError(t, err)
	require.Len(t, parsed.Records, 1)
	assert.True(t, parsed.Records[0].IsObjectCreated())

	key, err := parsed.Records[0].Key()
	require.NoError(t, err)
	assert.Equal(t, "original-images/my cat+1.jpg", key)
}

func TestParseEvent_Invalid(t *testing.T) {
	_, err := ParseEvent([]byte("{"))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`{"Records":[]}`))
	assert.Error(t, err)
}

func TestHandleEvent_IgnoresNonCreateEvents(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	body := `{"Records":[{"eventName":"ObjectRemoved:Delete","s3":{"object":{"key":"original-images/a.jpg"}}}]}`

	evt, err := ParseEvent([]byte(body))
	require.NoError(t, err)

	res := Handle(context.Background(), store, evt)
	require.Len(t, res, 1)
	assert.Equal(t, StatusSkipped, res[0].Status)
	assert.True(t, strings.HasPrefix(res[0].Message, "ignored event"))
}

// pngHeader returns a PNG holding only a signature and an IHDR chunk that
// declares w x h 8-bit grayscale.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 0, 0, 0, 0) // depth, gray, deflate, filter, no interlace

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestProcess_RejectsOversizedDimensions(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	data := pngHeader(30000, 30000)
	require.Equal(t, ContentTypePNG, DetectContentType(data))
	put(t, store, "original-images/huge.png", ContentTypePNG, data)

	evt := NewObjectCreatedEvent("b", "original-images/huge.png", int64(len(data)))
	res := Handle(context.Background(), store, &evt)

	require.Len(t, res, 1)
	assert.Equal(t, StatusFailed, res[0].Status)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res[0].Code)
	assert.Contains(t, res[0].Message, "too large")

	objects, err := store.List(context.Background(), ResizedPrefix)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestTransform_ChecksHeaderBeforeDecoding(t *testing.T) {
	_, _, err := Transform(pngHeader(10000, 5001), ContentTypePNG)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = Transform(pngHeader(100, 100), ContentTypePNG)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooLarge)
}

func TestProcess_SkipsFolderMarkers(t *testing.T) {
	store := objectstore.NewMemoryStore("b")
	put(t, store, OriginalPrefix, "", nil)

	evt := NewObjectCreatedEvent("b", OriginalPrefix, 0)
	res := Handle(context.Background(), store, &evt)

	require.Len(t, res, 1)
	assert.Equal(t, StatusSkipped, res[0].Status)
	assert.Equal(t, http.StatusOK, res[0].Code)
	assert.False(t, res[0].Failed())
}
