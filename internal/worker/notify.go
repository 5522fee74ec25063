package worker

// ExportNotifyMessage 是通过 Redis Pub/Sub 转发给 WebSocket 客户端的导出结果。
// 字段名与前端解析保持一致。
type ExportNotifyMessage struct {
	Status        string `json:"status"`
	DocumentID    string `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
	FileName      string `json:"file_name,omitempty"`
	Pages         int    `json:"pages,omitempty"`
	Stage         string `json:"stage,omitempty"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)
