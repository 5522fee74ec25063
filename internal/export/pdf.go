package export

import (
	"bytes"
	"fmt"
	"image"

	"github.com/go-pdf/fpdf"

	"resumeBuilder/internal/imaging"
)

const pageImageName = "resume-raster"

// encodePDF 把位图编码为 JPEG，并按 layout 在每页放置同一张图片。
// 超出页面的部分由 PDF 的页面边界裁掉。
func encodePDF(img image.Image, layout PageLayout, quality int) ([]byte, error) {
	raster, err := imaging.JPEGBytes(img, quality)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("resumeBuilder", true)

	opts := fpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(pageImageName, opts, bytes.NewReader(raster))
	for _, y := range layout.Offsets {
		pdf.AddPage()
		pdf.ImageOptions(pageImageName, 0, y, layout.ImageWidthMM, layout.ImageHeightMM, false, opts, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
