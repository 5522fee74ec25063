package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/errcode"
	"resumeBuilder/internal/export"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

func TestContentDisposition(t *testing.T) {
	got := contentDisposition("José Núñez.pdf")
	assert.Equal(t, `attachment; filename="Jose Nunez.pdf"; filename*=UTF-8''Jos%C3%A9%20N%C3%BA%C3%B1ez.pdf`, got)

	got = contentDisposition("简历.pdf")
	assert.Contains(t, got, `filename="resume.pdf"`)
	assert.Contains(t, got, "filename*=UTF-8''"+url.QueryEscape("简历")+".pdf")
}

func TestExportNow_ReturnsPDFOfEditorState(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"name": "Backend", "blank": true})
	path := "/v1/documents/" + doc.ID
	s.do(t, http.MethodPatch, path+"/personal", gin.H{"name": "Linus"})

	w := s.do(t, http.MethodPost, path+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, storage.ContentTypePDF, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Linus.pdf"`)
	assert.Equal(t, "2", w.Header().Get("X-Export-Pages"))
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())
	assert.Equal(t, "Linus", s.exporter.last.Personal.Name)
}

func TestExportNow_BusyIs409(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})
	s.exporter.err = export.ErrExportInProgress

	w := s.do(t, http.MethodPost, "/v1/documents/"+doc.ID+"/export", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, float64(errcode.ExportBusy), decode[map[string]any](t, w)["code"])
}

func TestExportNow_FailureReturnsNoFile(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})
	s.exporter.err = &export.Error{Stage: export.StageRasterize, Cause: errors.New("tainted")}

	w := s.do(t, http.MethodPost, "/v1/documents/"+doc.ID+"/export", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	body := decode[map[string]any](t, w)
	assert.Equal(t, "rasterize", body["stage"])
	assert.Equal(t, float64(errcode.RasterFailed), body["code"])
}

func TestEnqueueExport_FlushesAndQueues(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})
	path := "/v1/documents/" + doc.ID
	s.do(t, http.MethodPatch, path+"/personal", gin.H{"name": "Queued"})

	req := httptest.NewRequest(http.MethodPost, path+"/export/async", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "cid-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.Equal(t, "task-1", body["task_id"])
	assert.Equal(t, tasks.NotifyChannel(doc.ID), body["channel"])

	require.Len(t, s.queue.tasks, 1)
	var p tasks.ExportPDFPayload
	require.NoError(t, json.Unmarshal(s.queue.tasks[0].Payload(), &p))
	assert.Equal(t, tasks.ExportPDFPayload{DocumentID: doc.ID, CorrelationID: "cid-42"}, p)

	stored, err := s.store.Get(req.Context(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Queued", stored.Personal.Name, "pending edits are saved before the worker reads them")
}

func TestLatestExport(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})
	path := "/v1/documents/" + doc.ID

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path+"/exports/latest", nil).Code)

	pdfKey, previewKey := storage.NewExportKeys(doc.ID)
	require.NoError(t, s.store.RecordExport(t.Context(), doc.ID, store.ExportRecord{
		ObjectKey:        pdfKey,
		PreviewObjectKey: previewKey,
		FileName:         "CV.pdf",
		Pages:            3,
		ExportedAt:       time.Now(),
	}))

	w := s.do(t, http.MethodGet, path+"/exports/latest", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Contains(t, body["url"], pdfKey)
	assert.Contains(t, body["url"], `filename="CV.pdf"`)
	assert.Contains(t, body["previewUrl"], previewKey)
	assert.Equal(t, float64(3), body["pages"])
}

func TestDownloadAndListExports(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})
	path := "/v1/documents/" + doc.ID
	pdfKey, _ := storage.NewExportKeys(doc.ID)
	s.archive.objects[pdfKey] = []byte("%PDF archived")

	w := s.do(t, http.MethodGet, path+"/exports/file?key="+url.QueryEscape(pdfKey), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF archived", w.Body.String())
	assert.Equal(t, storage.ContentTypePDF, w.Header().Get("Content-Type"))

	otherKey, _ := storage.NewExportKeys("someone-else")
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path+"/exports/file?key="+url.QueryEscape(otherKey), nil).Code)

	missing, _ := storage.NewExportKeys(doc.ID)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path+"/exports/file?key="+url.QueryEscape(missing), nil).Code)

	list := decode[struct {
		Items []map[string]any `json:"items"`
	}](t, s.do(t, http.MethodGet, path+"/exports", nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, pdfKey, list.Items[0]["key"])
}

func TestNotificationsRequireRedis(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/v1/ws?document_id=x", nil).Code)
}
