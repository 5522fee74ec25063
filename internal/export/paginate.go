package export

import (
	"errors"
	"fmt"
)

// A4 纵向页面尺寸（毫米）。位图宽度总是映射到整页宽度。
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// epsilon 吸收浮点误差，避免剩余高度为 0 时多出一页空白。
const epsilon = 1e-6

var ErrEmptyRaster = errors.New("raster image has no area")

// PageLayout 描述同一张位图在各页上的放置方式。
type PageLayout struct {
	ImageWidthMM  float64
	ImageHeightMM float64
	// Offsets 是每页图片左上角的纵坐标（毫米），第一页为 0，之后每页上移一个页高。
	Offsets []float64
}

func (l PageLayout) PageCount() int { return len(l.Offsets) }

// PageHeightPx 返回一页在位图坐标中的高度。
func PageHeightPx(widthPx int) float64 {
	return PageHeightMM * float64(widthPx) / PageWidthMM
}

// Paginate 计算宽 widthPx、高 heightPx 的位图如何切成 A4 页。
// 高度不超过一页时只有一页；否则每页把整张位图向上平移一页高，
// 直到剩余未显示的高度不大于 0。页数等于 ceil(高度/页高)。
func Paginate(widthPx, heightPx int) (PageLayout, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return PageLayout{}, fmt.Errorf("%w: %dx%d", ErrEmptyRaster, widthPx, heightPx)
	}
	imgHeight := float64(heightPx) * PageWidthMM / float64(widthPx)
	layout := PageLayout{
		ImageWidthMM:  PageWidthMM,
		ImageHeightMM: imgHeight,
		Offsets:       []float64{0},
	}
	remaining := imgHeight - PageHeightMM
	for remaining > epsilon {
		offset := -PageHeightMM * float64(len(layout.Offsets))
		layout.Offsets = append(layout.Offsets, offset)
		remaining -= PageHeightMM
	}
	return layout, nil
}
