package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExportKeys(t *testing.T) {
	pdf, preview := NewExportKeys("doc-1")
	assert.True(t, strings.HasPrefix(pdf, "exports/doc-1/"))
	assert.Equal(t, strings.TrimSuffix(pdf, ".pdf"), strings.TrimSuffix(preview, ".jpg"))
	assert.True(t, IsExportKey("doc-1", pdf))
	assert.True(t, IsExportKey("doc-1", preview))
}

func TestIsExportKey(t *testing.T) {
	cases := map[string]bool{
		"exports/doc-1/a.pdf":          true,
		"exports/doc-1/a.JPG":          true,
		"exports/doc-2/a.pdf":          false,
		"exports/doc-1/../doc-2/a.pdf": false,
		"exports/doc-1//a.pdf":         false,
		"exports/doc-1/a.png":          false,
		"exports/doc-1\\a.pdf":         false,
		"":                             false,
		"exports/doc-1/" + strings.Repeat("a", 200) + ".pdf": false,
	}
	for key, want := range cases {
		assert.Equal(t, want, IsExportKey("doc-1", key), key)
	}
}

func TestIsNoSuchKeyFallback(t *testing.T) {
	assert.False(t, IsNoSuchKey(nil))
	assert.True(t, IsNoSuchKey(errString("The specified key does not exist.")))
	assert.True(t, IsNoSuchBucket(errString("NoSuchBucket: gone")))
	assert.False(t, IsNoSuchBucket(errString("timeout")))
}

type errString string

func (e errString) Error() string { return string(e) }
