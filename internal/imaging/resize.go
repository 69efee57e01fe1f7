package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
)

const (
	MaxWidth  = 300
	MaxHeight = 300

	// MaxPixels bounds width*height of an accepted source image.
	MaxPixels = 50_000_000

	jpegQuality = 85
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
)

// ErrUnsupportedType is returned for content the pipeline cannot decode.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when the declared dimensions exceed MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

// Supported reports whether contentType is one the pipeline can transform.
func Supported(contentType string) bool {
	switch contentType {
	case ContentTypeJPEG, ContentTypePNG, ContentTypeGIF:
		return true
	}
	return false
}

// DetectContentType sniffs data, ignoring any parameters.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// Fit scales (w, h) down to fit within (maxW, maxH) preserving aspect
// ratio. Images already inside the box are returned unchanged.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}

// Decode reads an image of the given content type.
func Decode(r io.Reader, contentType string) (image.Image, error) {
	switch contentType {
	case ContentTypeJPEG:
		return jpeg.Decode(r)
	case ContentTypePNG:
		return png.Decode(r)
	case ContentTypeGIF:
		return gif.Decode(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// DecodeConfig reads only the header of an image of the given content type.
func DecodeConfig(r io.Reader, contentType string) (image.Config, error) {
	switch contentType {
	case ContentTypeJPEG:
		return jpeg.DecodeConfig(r)
	case ContentTypePNG:
		return png.DecodeConfig(r)
	case ContentTypeGIF:
		return gif.DecodeConfig(r)
	}
	return image.Config{}, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// checkDimensions rejects headers declaring more than MaxPixels pixels, so
// the full pixel buffer is never allocated for them.
func checkDimensions(data []byte, contentType string) error {
	cfg, err := DecodeConfig(bytes.NewReader(data), contentType)
	if err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// Encode writes img in the given content type.
func Encode(w io.Writer, img image.Image, contentType string) error {
	switch contentType {
	case ContentTypeJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case ContentTypePNG:
		return png.Encode(w, img)
	case ContentTypeGIF:
		return gif.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// Resize returns img scaled to fit within MaxWidth x MaxHeight.
func Resize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), MaxWidth, MaxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Transform decodes data, resizes it, and encodes it back in the same format.
func Transform(data []byte, contentType string) ([]byte, image.Rectangle, error) {
	if err := checkDimensions(data, contentType); err != nil {
		return nil, image.Rectangle{}, err
	}

	img, err := Decode(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("failed to decode: %w", err)
	}

	out := Resize(img)

	var buf bytes.Buffer
	if err := Encode(&buf, out, contentType); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("failed to encode: %w", err)
	}
	return buf.Bytes(), out.Bounds(), nil
}
