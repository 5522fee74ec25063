// Package export 实现 PDF 导出管线：挂载离屏表面、超采样光栅化、
// 按 A4 页高切片、编码为 PDF。同一时间只允许一个导出。
package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"resumeBuilder/internal/imaging"
	"resumeBuilder/internal/metrics"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
)

const (
	DefaultScale        = 3.0
	DefaultJPEGQuality  = 98
	DefaultPreviewWidth = 320
	previewQuality      = 80
)

type Options struct {
	Scale         float64
	JPEGQuality   int
	PreviewWidth  int
	FallbackLabel string
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Artifact 是一次成功导出的结果。
type Artifact struct {
	FileName string
	PDF      []byte
	Pages    int
	// Preview 是第一页内容的 JPEG 缩略图。
	Preview []byte
	Width   int
	Height  int
}

type Pipeline struct {
	factory SurfaceFactory
	opts    Options
	logger  *slog.Logger
	busy    atomic.Bool
}

func NewPipeline(factory SurfaceFactory, opts Options) *Pipeline {
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = DefaultPreviewWidth
	}
	if opts.FallbackLabel == "" {
		opts.FallbackLabel = FallbackLabel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{factory: factory, opts: opts, logger: logger}
}

// Busy 报告是否有导出正在执行。
func (p *Pipeline) Busy() bool { return p.busy.Load() }

// Export 导出文档。已有导出在执行时立即返回 ErrExportInProgress；
// 任何阶段失败都不会返回部分结果，离屏表面在所有路径上都会被释放。
func (p *Pipeline) Export(ctx context.Context, doc *resume.Document) (_ *Artifact, err error) {
	if !p.busy.CompareAndSwap(false, true) {
		metrics.ExportRejected()
		return nil, ErrExportInProgress
	}
	defer p.busy.Store(false)

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	var pages int
	done := metrics.ExportStarted()
	defer func() {
		stage := ""
		if err != nil {
			s, _ := StageOf(err)
			stage = string(s)
		}
		done(stage, pages)
	}()

	logger := p.logger.With(slog.String("document_id", doc.ID))

	html, err := render.HTML(doc)
	if err != nil {
		return nil, &Error{Stage: StageRender, Cause: err}
	}

	surface, err := p.factory.Mount(ctx, html)
	if err != nil {
		return nil, &Error{Stage: StageSurface, Cause: err}
	}
	defer func() {
		if closeErr := surface.Close(); closeErr != nil {
			logger.Warn("release render surface", slog.Any("error", closeErr))
		}
	}()

	raster, err := surface.Rasterize(ctx, p.opts.Scale)
	if err != nil {
		return nil, &Error{Stage: StageRasterize, Cause: err}
	}
	bounds := raster.Bounds()

	layout, err := Paginate(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, &Error{Stage: StagePaginate, Cause: err}
	}

	pdf, err := encodePDF(raster, layout, p.opts.JPEGQuality)
	if err != nil {
		return nil, &Error{Stage: StageEncode, Cause: err}
	}

	preview, err := previewOf(raster, p.opts.PreviewWidth)
	if err != nil {
		return nil, &Error{Stage: StageEncode, Cause: err}
	}

	pages = layout.PageCount()
	logger.Info("export finished",
		slog.Int("pages", pages),
		slog.Int("width_px", bounds.Dx()),
		slog.Int("height_px", bounds.Dy()),
		slog.Int("pdf_bytes", len(pdf)),
	)
	return &Artifact{
		FileName: FileName(doc, p.opts.FallbackLabel),
		PDF:      pdf,
		Pages:    pages,
		Preview:  preview,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// previewOf 截取第一页对应的区域并缩放成缩略图。
func previewOf(raster image.Image, width int) ([]byte, error) {
	b := raster.Bounds()
	pageHeight := int(PageHeightPx(b.Dx()) + 0.5)
	band := imaging.Crop(raster, image.Rect(0, 0, b.Dx(), min(pageHeight, b.Dy())))
	thumb := imaging.ResizeToWidth(band, width)
	out, err := imaging.JPEGBytes(thumb, previewQuality)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return out, nil
}
