package database

import (
	"time"

	"gorm.io/datatypes"
)

// Document 是一份简历的持久化记录。内容整体存为 JSON，
// 标识与时间戳单独成列，列值为准。
type Document struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Name      string         `gorm:"size:255"`
	Content   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"index;autoUpdateTime:false"`

	// 最近一次归档导出，未启用对象存储时为空。
	ExportObjectKey  string `gorm:"size:512"`
	PreviewObjectKey string `gorm:"size:512"`
	ExportFileName   string `gorm:"size:255"`
	ExportPages      int
	ExportedAt       *time.Time
}
