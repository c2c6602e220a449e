// Package ingest decodes externally supplied face images into pixel grids
// and normalises their size.
package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultSize is the edge length face images are normalised to.
const DefaultSize = 640

// DefaultMaxDimension bounds the width and height of a decoded image.
const DefaultMaxDimension = 8192

// ErrDecode is returned for bad base64 or unreadable image bytes.
var ErrDecode = errors.New("ingest: image decode failed")

// ErrTooLarge is returned for an image whose header declares a width or
// height above the limit. It matches ErrDecode.
var ErrTooLarge = fmt.Errorf("%w: image too large", ErrDecode)

// StripDataURL removes a leading "data:<mime>;base64," header if present.
func StripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodeBase64 decodes a base64 image string, with or without a data URL
// header, into an image. See DecodeBytes for maxDim.
func DecodeBase64(s string, maxDim int) (image.Image, string, error) {
	payload := StripDataURL(s)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// browsers occasionally drop padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, "", fmt.Errorf("%w: base64: %v", ErrDecode, err)
		}
	}
	return DecodeBytes(raw, maxDim)
}

// DecodeBytes decodes encoded image bytes. The format name is returned
// alongside the image. The header is checked first: an image wider or taller
// than maxDim pixels is rejected with ErrTooLarge before any pixel data is
// decoded. A maxDim of zero or less means DefaultMaxDimension.
func DecodeBytes(raw []byte, maxDim int) (image.Image, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width > maxDim || cfg.Height > maxDim {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, cfg.Width, cfg.Height, maxDim)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Load decodes an image file from disk.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, _, err := DecodeBytes(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Normalize rescales img to size x size RGBA. Aspect ratio is not
// preserved; face photos are expected to be roughly square.
func Normalize(img image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ToRGBA copies img into an RGBA image with origin (0,0) without resizing.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
