package export

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"resumeBuilder/internal/errcode"
)

func TestCode(t *testing.T) {
	wrap := func(s Stage) error {
		return fmt.Errorf("job: %w", &Error{Stage: s, Cause: errors.New("boom")})
	}
	assert.Equal(t, errcode.OK, Code(nil))
	assert.Equal(t, errcode.ExportBusy, Code(ErrExportInProgress))
	assert.Equal(t, errcode.RenderFailed, Code(wrap(StageSurface)))
	assert.Equal(t, errcode.RasterFailed, Code(wrap(StagePaginate)))
	assert.Equal(t, errcode.EncodeFailed, Code(wrap(StageEncode)))
	assert.Equal(t, errcode.SystemError, Code(errors.New("db down")))
}
