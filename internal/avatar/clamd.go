package avatar

import (
	"fmt"
	"io"

	"github.com/dutchcoders/go-clamd"

	"resumeBuilder/internal/config"
)

// ClamdScanner 通过 clamd 的 INSTREAM 扫描上传内容。
type ClamdScanner struct {
	client *clamd.Clamd
}

func NewClamdScanner(addr string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(addr)}
}

func (s *ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan avatar: %w", err)
	}

	var scanErr error
	for res := range results {
		switch res.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			scanErr = fmt.Errorf("%w: %s", ErrInfected, res.Description)
		default:
			if scanErr == nil {
				scanErr = fmt.Errorf("scan avatar: %s", res.Description)
			}
		}
	}
	return scanErr
}

// NewFromConfig 按配置创建 Ingestor；配置了 clamd 地址时启用病毒扫描。
func NewFromConfig(cfg config.AvatarConfig) *Ingestor {
	opts := Options{
		MaxBytes:  cfg.MaxBytes,
		MaxPixels: cfg.MaxPixels,
		MaxEdge:   cfg.MaxEdge,
		Quality:   cfg.JPEGQuality,
	}
	if cfg.ClamdAddr != "" {
		opts.Scanner = NewClamdScanner(cfg.ClamdAddr)
	}
	return NewIngestor(opts)
}
