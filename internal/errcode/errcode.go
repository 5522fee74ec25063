package errcode

// 错误码约定（随导出通知下发给客户端）：
// - 0：无错误
// - 4xxx：可恢复错误，用户可以重试
// - 5xxx：系统错误，导出已中止且不会产出文件
const (
	OK              = 0
	ResourceMissing = 4004
	ExportBusy      = 4009
	SystemError     = 5000
	RenderFailed    = 5001
	RasterFailed    = 5002
	EncodeFailed    = 5003
)
