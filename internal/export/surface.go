package export

import (
	"context"
	"image"
)

// Surface 是已挂载、完成排版的离屏渲染表面。
type Surface interface {
	// Rasterize 以 scale 倍超采样把内容的自然尺寸（而非视口裁剪后的尺寸）绘制成位图。
	Rasterize(ctx context.Context, scale float64) (image.Image, error)
	Close() error
}

// SurfaceFactory 把 HTML 挂载成 Surface。
type SurfaceFactory interface {
	Mount(ctx context.Context, html []byte) (Surface, error)
}
