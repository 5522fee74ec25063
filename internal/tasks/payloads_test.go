package tasks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExportPDFTask(t *testing.T) {
	task, err := NewExportPDFTask("doc-1", "cid-1")
	require.NoError(t, err)
	assert.Equal(t, TypeExportPDF, task.Type())

	var p ExportPDFPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, ExportPDFPayload{DocumentID: "doc-1", CorrelationID: "cid-1"}, p)
	assert.Equal(t, "export_notify:doc-1", NotifyChannel("doc-1"))
}
