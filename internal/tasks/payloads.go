package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeExportPDF = "export:pdf"
	QueueExports  = "exports"
)

// ExportPDFPayload 描述后台导出所需的最小信息。
type ExportPDFPayload struct {
	DocumentID    string `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewExportPDFTask 构造一个文档导出任务。
func NewExportPDFTask(documentID, correlationID string, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPDFPayload{
		DocumentID:    documentID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	opts = append([]asynq.Option{asynq.Queue(QueueExports)}, opts...)
	return asynq.NewTask(TypeExportPDF, payload, opts...), nil
}

// NotifyChannel 是某份文档导出结果的 Redis Pub/Sub 频道。
func NotifyChannel(documentID string) string {
	return "export_notify:" + documentID
}
