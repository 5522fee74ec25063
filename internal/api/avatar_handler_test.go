package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/resume"
)

func newMultipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		img.Set(y%w, y, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type avatarResponse struct {
	Avatar struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"avatar"`
	Document resume.Document `json:"document"`
}

func (s *testServer) upload(t *testing.T, docID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := newMultipartUpload(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/"+docID+"/avatar", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUploadAvatar_EmbedsDownsampledJPEG(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})

	w := s.upload(t, doc.ID, "me.png", pngOf(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[avatarResponse](t, w)
	assert.Equal(t, 400, resp.Avatar.Width)
	assert.Equal(t, 300, resp.Avatar.Height)
	assert.True(t, strings.HasPrefix(resp.Document.Personal.Avatar, "data:image/jpeg;base64,"))

	w = s.do(t, http.MethodDelete, "/v1/documents/"+doc.ID+"/avatar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[resume.Document](t, w).Personal.Avatar)
}

func TestUploadAvatar_RejectsWithoutMutation(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})

	w := s.upload(t, doc.ID, "notes.txt", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := make([]byte, 300<<10)
	copy(big, pngOf(t, 10, 10))
	w = s.upload(t, doc.ID, "big.png", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	status := decode[map[string]any](t, s.do(t, http.MethodGet, "/v1/documents/"+doc.ID+"/status", nil))
	assert.Equal(t, float64(0), status["version"])
	current := decode[resume.Document](t, s.do(t, http.MethodGet, "/v1/documents/"+doc.ID, nil))
	assert.Empty(t, current.Personal.Avatar)
}

func TestUploadAvatar_MissingFileAndDocument(t *testing.T) {
	s := newTestServer(t)
	doc := s.create(t, gin.H{"blank": true})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/"+doc.ID+"/avatar", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, s.upload(t, "missing", "me.png", pngOf(t, 10, 10)).Code)
}
