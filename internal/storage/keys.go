package storage

import (
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	exportsRoot    = "exports/"
	maxObjectKey   = 200
	ContentTypePDF = "application/pdf"
	ContentTypeJPG = "image/jpeg"
)

// ExportPrefix 是某份文档全部导出产物的前缀。
func ExportPrefix(documentID string) string {
	return exportsRoot + documentID + "/"
}

// NewExportKeys 为一次导出分配 PDF 与预览图的对象键，二者共享同一个随机名。
func NewExportKeys(documentID string) (pdfKey, previewKey string) {
	base := ExportPrefix(documentID) + uuid.NewString()
	return base + ".pdf", base + ".jpg"
}

// IsExportKey 校验对象键属于该文档的导出目录，并拒绝路径穿越与非导出扩展名。
func IsExportKey(documentID, key string) bool {
	if key == "" || documentID == "" || !utf8.ValidString(key) || len(key) > maxObjectKey {
		return false
	}
	if !strings.HasPrefix(key, ExportPrefix(documentID)) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	switch strings.ToLower(path.Ext(key)) {
	case ".pdf", ".jpg":
		return true
	}
	return false
}
