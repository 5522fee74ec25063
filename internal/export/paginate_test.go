package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 630px 宽时一页高 891px。
const (
	testWidth      = 630
	testPageHeight = 891
)

func TestPageHeightPx(t *testing.T) {
	assert.InDelta(t, float64(testPageHeight), PageHeightPx(testWidth), 1e-9)
}

func TestPaginate_Boundaries(t *testing.T) {
	cases := []struct {
		name   string
		height int
		pages  int
	}{
		{"shorter than a page", 400, 1},
		{"exactly one page", testPageHeight, 1},
		{"one and a half pages", testPageHeight * 3 / 2, 2},
		{"exactly two pages", testPageHeight * 2, 2},
		{"just over two pages", testPageHeight*2 + 1, 3},
		{"exactly three pages", testPageHeight * 3, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout, err := Paginate(testWidth, tc.height)
			require.NoError(t, err)
			assert.Equal(t, tc.pages, layout.PageCount())
			// 页数 = ceil(总高 / 页高)
			assert.Equal(t, tc.pages, int(math.Ceil(float64(tc.height)/testPageHeight)))
		})
	}
}

func TestPaginate_OffsetsShiftByPageHeight(t *testing.T) {
	layout, err := Paginate(testWidth, testPageHeight*5/2)
	require.NoError(t, err)

	assert.Equal(t, PageWidthMM, layout.ImageWidthMM)
	assert.InDelta(t, PageHeightMM*2.5, layout.ImageHeightMM, 0.5)
	require.Len(t, layout.Offsets, 3)
	assert.Equal(t, []float64{0, -PageHeightMM, -2 * PageHeightMM}, layout.Offsets)
}

func TestPaginate_ScaleInvariant(t *testing.T) {
	for _, scale := range []int{1, 2, 3} {
		layout, err := Paginate(testWidth*scale, testPageHeight*2*scale)
		require.NoError(t, err)
		assert.Equal(t, 2, layout.PageCount(), "scale %d", scale)
	}
}

func TestPaginate_RejectsEmpty(t *testing.T) {
	_, err := Paginate(0, 100)
	require.ErrorIs(t, err, ErrEmptyRaster)
	_, err = Paginate(100, 0)
	require.ErrorIs(t, err, ErrEmptyRaster)
}
