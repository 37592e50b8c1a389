package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/config"
)

func fmHandler(t *testing.T) (*FileManagerHandler, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "assets"), 0o755))
	return &FileManagerHandler{Cfg: config.Config{FileManagerRoot: root}}, root
}

func fmContext(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFileManagerList(t *testing.T) {
	h, _ := fmHandler(t)
	c, rec := fmContext(http.MethodGet, "/api/file-manager?path=/", "")

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes.txt")
	assert.Contains(t, rec.Body.String(), `"type":"folder"`)
	assert.Contains(t, rec.Body.String(), `"parent":null`)
}

func TestFileManagerReadWrite(t *testing.T) {
	h, root := fmHandler(t)

	c, rec := fmContext(http.MethodGet, "/api/file-manager/file?path=/notes.txt", "")
	require.NoError(t, h.ReadFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")

	c, rec = fmContext(http.MethodPut, "/api/file-manager/file",
		`{"path":"/notes.txt","content":"updated"}`)
	require.NoError(t, h.WriteFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data, err := os.ReadFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestFileManagerReadMissingFile(t *testing.T) {
	h, _ := fmHandler(t)
	c, rec := fmContext(http.MethodGet, "/api/file-manager/file?path=/nope.txt", "")

	require.NoError(t, h.ReadFile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "File not found.")
}

func TestFileManagerCreateFileConflict(t *testing.T) {
	h, root := fmHandler(t)

	c, rec := fmContext(http.MethodPost, "/api/file-manager/file",
		`{"path":"/","name":"notes.txt","content":"x"}`)
	require.NoError(t, h.CreateFile(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"exists":true`)

	c, rec = fmContext(http.MethodPost, "/api/file-manager/file",
		`{"path":"/","name":"notes.txt","content":"x","overwrite":true}`)
	require.NoError(t, h.CreateFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	data, err := os.ReadFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestFileManagerCreateFolder(t *testing.T) {
	h, root := fmHandler(t)
	c, rec := fmContext(http.MethodPost, "/api/file-manager/folder",
		`{"path":"/","name":"docs"}`)

	require.NoError(t, h.CreateFolder(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	info, err := os.Stat(filepath.Join(root, "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileManagerDelete(t *testing.T) {
	h, root := fmHandler(t)
	c, rec := fmContext(http.MethodDelete, "/api/file-manager?path=/assets", "")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := os.Stat(filepath.Join(root, "assets"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileManagerRefusesEscape(t *testing.T) {
	h, root := fmHandler(t)
	outside := filepath.Join(filepath.Dir(root), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	defer os.Remove(outside)

	// Traversal segments are collapsed before resolving, so the path stays
	// inside the sandbox and never reaches the sibling file.
	c, rec := fmContext(http.MethodGet, "/api/file-manager/file?path=/../victim.txt", "")
	require.NoError(t, h.ReadFile(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = fmContext(http.MethodDelete, "/api/file-manager?path=/..", "")
	require.NoError(t, h.Delete(c))
	assert.NotEqual(t, http.StatusOK, rec.Code)
	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
