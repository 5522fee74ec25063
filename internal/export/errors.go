package export

import (
	"errors"
	"fmt"

	"resumeBuilder/internal/errcode"
)

// ErrExportInProgress 表示已有导出在执行，本次请求被拒绝。
var ErrExportInProgress = errors.New("an export is already running")

// Stage 标识导出管线中的步骤。
type Stage string

const (
	StageRender    Stage = "render"
	StageSurface   Stage = "surface"
	StageRasterize Stage = "rasterize"
	StagePaginate  Stage = "paginate"
	StageEncode    Stage = "encode"
)

// Error 携带失败的阶段，导出失败时不会产出任何文件。
type Error struct {
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StageOf 返回 err 链上第一个导出错误的阶段。
func StageOf(err error) (Stage, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage, true
	}
	return "", false
}

// Code 把导出错误映射为下发给客户端的错误码。
func Code(err error) int {
	if err == nil {
		return errcode.OK
	}
	if errors.Is(err, ErrExportInProgress) {
		return errcode.ExportBusy
	}
	stage, _ := StageOf(err)
	switch stage {
	case StageRender, StageSurface:
		return errcode.RenderFailed
	case StageRasterize, StagePaginate:
		return errcode.RasterFailed
	case StageEncode:
		return errcode.EncodeFailed
	}
	return errcode.SystemError
}
