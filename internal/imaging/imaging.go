// Package imaging 提供头像与导出预览共用的位图处理。
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// FitDimensions 返回按比例缩放后的尺寸，使长边不超过 maxEdge；不放大。
// 宽大于高时以宽为准，否则以高为准，结果四舍五入且至少为 1。
func FitDimensions(w, h, maxEdge int) (int, int) {
	if w <= 0 || h <= 0 || maxEdge <= 0 {
		return w, h
	}
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w > h {
		nh := int(math.Round(float64(h) * float64(maxEdge) / float64(w)))
		return maxEdge, max(nh, 1)
	}
	nw := int(math.Round(float64(w) * float64(maxEdge) / float64(h)))
	return max(nw, 1), maxEdge
}

// Resize 用 CatmullRom 插值缩放到指定尺寸，并铺白底（JPEG 不支持透明）。
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// FitWithin 按 FitDimensions 缩放，尺寸未变时只铺白底。
func FitWithin(src image.Image, maxEdge int) *image.RGBA {
	b := src.Bounds()
	w, h := FitDimensions(b.Dx(), b.Dy(), maxEdge)
	return Resize(src, w, h)
}

// ResizeToWidth 等比缩放到指定宽度；原图更窄时保持原尺寸。
func ResizeToWidth(src image.Image, width int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 || b.Dx() <= width {
		return Resize(src, b.Dx(), b.Dy())
	}
	h := int(math.Round(float64(b.Dy()) * float64(width) / float64(b.Dx())))
	return Resize(src, width, max(h, 1))
}

// Crop 返回 rect 与图像边界的交集部分，坐标从 0 开始。
func Crop(src image.Image, rect image.Rectangle) *image.RGBA {
	rect = rect.Add(src.Bounds().Min).Intersect(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst
}

// EncodeJPEG 以给定质量（1..100）编码。
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		return fmt.Errorf("jpeg quality %d out of range", quality)
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// JPEGBytes 是 EncodeJPEG 的便捷形式。
func JPEGBytes(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
