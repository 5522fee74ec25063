package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute 在进程内运行命令并返回标准输出。
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	newName, newBlank, newPreset = "", false, ""
	exportOut, exportPreview = "", ""
	avatarClear = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "resumes.db")
}

func TestNewListDuplicateDelete(t *testing.T) {
	db := tempDB(t)

	out, err := execute(t, db, "new", "--name", "Backend CV", "--blank")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = execute(t, db, "duplicate", id)
	require.NoError(t, err)
	dupID := strings.TrimSpace(out)
	assert.NotEqual(t, id, dupID)

	out, err = execute(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, dupID)
	assert.Contains(t, out, "Backend CV (copy)")

	_, err = execute(t, db, "delete", id)
	require.NoError(t, err)

	out, err = execute(t, db, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)
	assert.Contains(t, out, dupID)
}

func TestNew_UnknownPreset(t *testing.T) {
	_, err := execute(t, tempDB(t), "new", "--preset", "no-such-theme")
	require.Error(t, err)
}

func TestDelete_Missing(t *testing.T) {
	_, err := execute(t, tempDB(t), "delete", "missing")
	require.Error(t, err)
}

func TestExport_RequiresOut(t *testing.T) {
	_, err := execute(t, tempDB(t), "export", "some-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "out" not set`)
}

func TestAvatar_AttachAndClear(t *testing.T) {
	db := tempDB(t)
	out, err := execute(t, db, "new", "--blank")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		img.Set(x, x%400, color.RGBA{R: 255, A: 255})
	}
	path := filepath.Join(t.TempDir(), "me.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err = execute(t, db, "avatar", id, path)
	require.NoError(t, err)
	assert.Contains(t, out, "avatar 400x200 from image/png")

	_, err = execute(t, db, "avatar", id, "--clear")
	require.NoError(t, err)

	_, err = execute(t, db, "avatar", id)
	require.Error(t, err)
}
