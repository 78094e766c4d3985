package imaging

import (
	"fmt"
	"image"
)

// FromNV21 wraps an NV21 camera frame (Y plane followed by interleaved VU)
// as a YCbCr image. The frame data is copied.
func FromNV21(data []byte, width, height int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imaging: invalid nv21 size %dx%d", width, height)
	}
	ySize := width * height
	cw, ch := (width+1)/2, (height+1)/2
	want := ySize + 2*cw*ch
	if len(data) < want {
		return nil, fmt.Errorf("imaging: nv21 frame too short: %d bytes, want %d", len(data), want)
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	for y := 0; y < height; y++ {
		copy(img.Y[y*img.YStride:y*img.YStride+width], data[y*width:(y+1)*width])
	}
	vu := data[ySize:]
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			i := (y*cw + x) * 2
			o := y*img.CStride + x
			img.Cr[o] = vu[i]
			img.Cb[o] = vu[i+1]
		}
	}
	return img, nil
}
