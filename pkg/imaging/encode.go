// Package imaging turns camera frames and uploaded images into the base64
// JPEG payload the detector providers expect.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	// Registered decoders for uploads.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// DefaultQuality is the JPEG quality sent to detectors.
const DefaultQuality = 90

// ErrEmptyImage is returned for nil or zero-sized images.
var ErrEmptyImage = errors.New("imaging: empty image")

// Encoder produces JPEG payloads with a fixed quality and size cap.
type Encoder struct {
	// Quality is the JPEG quality (1-100).
	Quality int

	// MaxDimension caps the longer side. 0 keeps the original size.
	MaxDimension int
}

// NewEncoder returns an encoder, clamping quality into range.
func NewEncoder(quality, maxDimension int) Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if maxDimension < 0 {
		maxDimension = 0
	}
	return Encoder{Quality: quality, MaxDimension: maxDimension}
}

// JPEG encodes img as an RGB JPEG, downscaling when it exceeds MaxDimension.
func (e Encoder) JPEG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	q := e.Quality
	if q == 0 {
		q = DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, toRGBA(e.fit(img)), &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64 encodes img as JPEG and returns standard base64 without line breaks.
func (e Encoder) Base64(img image.Image) (string, error) {
	data, err := e.JPEG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode reads any registered image format (jpeg, png, gif, bmp, tiff, webp).
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}
	return img, format, nil
}

// Scale returns the size img would be resized to for the given cap.
func Scale(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, h*maxDim/w)
	}
	return max(1, w*maxDim/h), maxDim
}

func (e Encoder) fit(img image.Image) image.Image {
	b := img.Bounds()
	w, h := Scale(b.Dx(), b.Dy(), e.MaxDimension)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// toRGBA flattens alpha onto white. YCbCr and Gray are encoded as is.
func toRGBA(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray:
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
