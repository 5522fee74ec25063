package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/render"
)

// ViewportWidthPx 是 210mm 在 96 DPI 下的宽度。
const ViewportWidthPx = 794

// RodFactory 为每次导出启动一个无头 Chromium，并把 HTML 载入新标签页。
type RodFactory struct {
	Bin         string
	Logger      *slog.Logger
	LoadTimeout time.Duration
}

func (f *RodFactory) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

func (f *RodFactory) Mount(ctx context.Context, html []byte) (_ Surface, err error) {
	logger := f.logger()
	loadTimeout := f.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Second
	}

	launch := launcher.New().
		Headless(true).
		NoSandbox(true).
		Context(ctx)
	if f.Bin != "" {
		launch = launch.Bin(f.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}
	var surface *rodSurface
	defer func() {
		if err == nil {
			return
		}
		if surface != nil {
			_ = surface.closeBrowser()
			return
		}
		launch.Cleanup()
	}()

	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	surface = &rodSurface{launch: launch, browser: browser, logger: logger}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	surface.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             ViewportWidthPx,
		Height:            1123,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.SetDocumentContent(string(html)); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.Timeout(loadTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	// 等待字体就绪，避免回退字体的度量影响排版。
	if _, evalErr := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); evalErr != nil {
		logger.Warn("document.fonts.ready wait failed, continue", slog.Any("error", evalErr))
	}
	return surface, nil
}

type rodSurface struct {
	launch  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	logger  *slog.Logger
}

func (s *rodSurface) Rasterize(ctx context.Context, scale float64) (image.Image, error) {
	page := s.page.Context(ctx)

	res, err := page.Eval(`(sel) => {
	  const el = document.querySelector(sel);
	  if (!el) return null;
	  const r = el.getBoundingClientRect();
	  return {
	    x: r.left + window.scrollX,
	    y: r.top + window.scrollY,
	    width: Math.ceil(Math.max(el.scrollWidth, r.width)),
	    height: Math.ceil(Math.max(el.scrollHeight, r.height))
	  };
	}`, render.RootSelector)
	if err != nil {
		return nil, fmt.Errorf("measure content: %w", err)
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("measure content: %s not found", render.RootSelector)
	}
	x := res.Value.Get("x").Num()
	y := res.Value.Get("y").Num()
	width := res.Value.Get("width").Int()
	height := res.Value.Get("height").Int()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("measure content: empty box %dx%d", width, height)
	}

	// 视口扩展到内容的自然高度，截图不受视口裁剪。
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             max(width, ViewportWidthPx),
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("resize viewport: %w", err)
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      x,
			Y:      y,
			Width:  float64(width),
			Height: float64(height),
			Scale:  scale,
		},
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	s.logger.Debug("rasterized surface",
		slog.Int("width_px", img.Bounds().Dx()),
		slog.Int("height_px", img.Bounds().Dy()),
		slog.Float64("scale", scale),
	)
	return img, nil
}

func (s *rodSurface) Close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if err := s.closeBrowser(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *rodSurface) closeBrowser() error {
	var err error
	if s.browser != nil {
		if closeErr := s.browser.Close(); closeErr != nil {
			err = fmt.Errorf("close browser: %w", closeErr)
		}
	}
	s.launch.Cleanup()
	return err
}

// NewFromConfig 组装基于 Chromium 的导出管线。
func NewFromConfig(cfg config.ExportConfig, logger *slog.Logger) *Pipeline {
	factory := &RodFactory{Bin: cfg.ChromiumBin, Logger: logger, LoadTimeout: cfg.Timeout}
	return NewPipeline(factory, Options{
		Scale:         cfg.Scale,
		JPEGQuality:   cfg.JPEGQuality,
		PreviewWidth:  cfg.PreviewWidth,
		FallbackLabel: cfg.FallbackLabel,
		Timeout:       cfg.Timeout,
		Logger:        logger,
	})
}
