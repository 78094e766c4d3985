package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestEncoderJPEG(t *testing.T) {
	enc := NewEncoder(90, 0)
	data, err := enc.JPEG(solid(32, 16, color.NRGBA{R: 200, A: 255}))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestEncoderDownscales(t *testing.T) {
	enc := NewEncoder(90, 64)
	data, err := enc.JPEG(solid(256, 128, color.NRGBA{G: 255, A: 255}))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestEncoderBase64(t *testing.T) {
	s, err := NewEncoder(90, 0).Base64(solid(8, 8, color.White))
	require.NoError(t, err)
	assert.NotContains(t, s, "\n")

	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, raw[:2])
}

func TestEncoderEmpty(t *testing.T) {
	_, err := NewEncoder(90, 0).JPEG(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = NewEncoder(90, 0).JPEG(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestNewEncoderClamps(t *testing.T) {
	assert.Equal(t, DefaultQuality, NewEncoder(0, 0).Quality)
	assert.Equal(t, DefaultQuality, NewEncoder(101, 0).Quality)
	assert.Equal(t, 0, NewEncoder(50, -3).MaxDimension)
}

func TestScale(t *testing.T) {
	tests := []struct {
		w, h, max, ww, wh int
	}{
		{640, 480, 0, 640, 480},
		{640, 480, 1280, 640, 480},
		{2560, 1440, 1280, 1280, 720},
		{1080, 1920, 1280, 720, 1280},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := Scale(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.ww, w)
		assert.Equal(t, tt.wh, h)
	}
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(4, 4, color.Black)))

	img, format, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, _, err = Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, _, err = Decode([]byte("not an image"))
	assert.Error(t, err)
}

func TestFromNV21(t *testing.T) {
	w, h := 4, 2
	frame := make([]byte, w*h+w*h/2)
	for i := 0; i < w*h; i++ {
		frame[i] = 100
	}
	for i := w * h; i < len(frame); i += 2 {
		frame[i] = 200  // V
		frame[i+1] = 50 // U
	}

	img, err := FromNV21(frame, w, h)
	require.NoError(t, err)
	c := img.YCbCrAt(1, 1)
	assert.Equal(t, uint8(100), c.Y)
	assert.Equal(t, uint8(50), c.Cb)
	assert.Equal(t, uint8(200), c.Cr)

	_, err = FromNV21(frame[:5], w, h)
	assert.Error(t, err)
	_, err = FromNV21(frame, 0, h)
	assert.Error(t, err)

	data, err := NewEncoder(90, 0).JPEG(img)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
