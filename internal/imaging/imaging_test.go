package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitDimensions(t *testing.T) {
	cases := []struct {
		w, h, edge   int
		wantW, wantH int
	}{
		{1200, 800, 400, 400, 267},
		{800, 1200, 400, 267, 400},
		{1000, 1000, 400, 400, 400},
		{300, 200, 400, 300, 200},
		{10000, 1, 400, 400, 1},
	}
	for _, tc := range cases {
		w, h := FitDimensions(tc.w, tc.h, tc.edge)
		assert.Equal(t, tc.wantW, w, "%dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, h, "%dx%d", tc.w, tc.h)
	}
}

func TestResize_FlattensTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	out := FitWithin(src, 10)
	assert.Equal(t, image.Rect(0, 0, 10, 5), out.Bounds())
	r, g, b, _ := out.At(3, 3).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 30))
	for y := 10; y < 20; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	band := Crop(src, image.Rect(0, 10, 10, 20))
	assert.Equal(t, image.Rect(0, 0, 10, 10), band.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, band.RGBAAt(5, 5))

	clipped := Crop(src, image.Rect(0, 25, 10, 40))
	assert.Equal(t, 5, clipped.Bounds().Dy())
}

func TestResizeToWidth(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 630, 1782))
	out := ResizeToWidth(src, 315)
	assert.Equal(t, 315, out.Bounds().Dx())
	assert.Equal(t, 891, out.Bounds().Dy())

	narrow := ResizeToWidth(image.NewRGBA(image.Rect(0, 0, 100, 50)), 315)
	assert.Equal(t, 100, narrow.Bounds().Dx())
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	data, err := JPEGBytes(img, 90)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)

	_, err = JPEGBytes(img, 0)
	require.Error(t, err)
}
