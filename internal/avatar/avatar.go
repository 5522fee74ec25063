// Package avatar 校验、缩放并重新编码头像，结果以 data URI 形式嵌入个人信息。
package avatar

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"resumeBuilder/internal/imaging"
	"resumeBuilder/internal/resume"
)

const (
	DefaultMaxBytes  = 5 << 20
	DefaultMaxEdge   = 400
	DefaultQuality   = 90
	DefaultMaxPixels = 40_000_000
)

var (
	ErrTooLarge = errors.New("image exceeds size limit")
	ErrNotImage = errors.New("file is not a supported image")
	ErrInfected = errors.New("malicious file detected")
)

// Scanner 在解码前检查上传内容，发现威胁时返回 ErrInfected。
type Scanner interface {
	Scan(r io.Reader) error
}

type Options struct {
	MaxBytes int64
	// MaxPixels 限制解码后的像素数，压缩率很高的小文件也可能解码出巨大的位图。
	MaxPixels int64
	MaxEdge   int
	Quality   int
	Scanner   Scanner
}

// Result 是处理后的头像。
type Result struct {
	DataURI     string `json:"dataUri"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SourceMIME  string `json:"sourceMime"`
	SourceBytes int    `json:"sourceBytes"`
}

type Ingestor struct {
	opts Options
}

func NewIngestor(opts Options) *Ingestor {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.MaxEdge <= 0 {
		opts.MaxEdge = DefaultMaxEdge
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	return &Ingestor{opts: opts}
}

func (i *Ingestor) MaxBytes() int64 { return i.opts.MaxBytes }

// Ingest 读取上传内容并生成头像。size 为声明的大小，未知时传 -1。
func (i *Ingestor) Ingest(r io.Reader, size int64) (*Result, error) {
	if size > i.opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	data, err := io.ReadAll(io.LimitReader(r, i.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if int64(len(data)) > i.opts.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, i.opts.MaxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	if i.opts.Scanner != nil {
		if err := i.opts.Scanner.Scan(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrNotImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > i.opts.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	out := imaging.FitWithin(src, i.opts.MaxEdge)
	encoded, err := imaging.JPEGBytes(out, i.opts.Quality)
	if err != nil {
		return nil, err
	}
	return &Result{
		DataURI:     "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded),
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		SourceMIME:  mt.String(),
		SourceBytes: len(data),
	}, nil
}

// Attach 处理头像并写入文档；失败时文档保持不变。
func (i *Ingestor) Attach(doc *resume.Document, r io.Reader, size int64) (*Result, error) {
	res, err := i.Ingest(r, size)
	if err != nil {
		return nil, err
	}
	doc.UpdatePersonal(resume.PersonalPatch{Avatar: &res.DataURI})
	return res, nil
}
