package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/feedback-board/internal/config"
)

// FileManagerHandler exposes a sandboxed file browser over the directory
// named by FILE_MANAGER_ROOT.  Every request path is resolved relative to
// that root; anything that escapes it is rejected.
type FileManagerHandler struct {
	Cfg config.Config
}

var iconByExt = map[string]string{
	"js": "js", "json": "json", "html": "html", "css": "css",
	"md": "md", "txt": "txt", "env": "env",
	"png": "image", "jpg": "image", "jpeg": "image", "svg": "image",
	"mp3": "audio", "wav": "audio", "mp4": "video", "mov": "video",
	"zip": "zip", "rar": "zip", "pdf": "pdf",
	"doc": "doc", "docx": "doc", "xls": "xls", "xlsx": "xls",
}

func fileIcon(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if icon, ok := iconByExt[ext]; ok {
		return icon
	}
	return "file"
}

// resolve maps a client-supplied path onto the sandbox root.  The cleaned
// path must stay inside the root or the request is refused.
func (h *FileManagerHandler) resolve(clientPath string) (string, error) {
	cleaned := path.Clean("/" + clientPath)
	full := filepath.Join(h.Cfg.FileManagerRoot, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(h.Cfg.FileManagerRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("path escapes the managed directory")
	}
	return full, nil
}

type fmEntry struct {
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Icon  string     `json:"icon"`
	Size  *int64     `json:"size"`
	MTime *time.Time `json:"mtime"`
}

// List returns the contents of one directory plus its parent for navigation.
func (h *FileManagerHandler) List(c echo.Context) error {
	currPath := c.QueryParam("path")
	if currPath == "" {
		currPath = "/"
	}
	currPath = path.Clean("/" + currPath)

	full, err := h.resolve(currPath)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not read directory."})
	}

	content := make([]fmEntry, 0, len(entries))
	for _, e := range entries {
		item := fmEntry{Name: e.Name(), Type: "file", Icon: fileIcon(e.Name())}
		if e.IsDir() {
			item.Type = "folder"
			item.Icon = "folder"
		}
		if info, ierr := e.Info(); ierr == nil {
			mt := info.ModTime()
			item.MTime = &mt
			if !e.IsDir() {
				sz := info.Size()
				item.Size = &sz
			}
		}
		content = append(content, item)
	}

	var parent any
	if currPath != "/" {
		parent = path.Dir(currPath)
	}
	return c.JSON(http.StatusOK, echo.Map{"path": currPath, "parent": parent, "content": content})
}

type createFolderReq struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// CreateFolder makes one new directory; the parent must already exist.
func (h *FileManagerHandler) CreateFolder(c echo.Context) error {
	var req createFolderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Folder name is required."})
	}
	full, err := h.resolve(path.Join(req.Path, req.Name))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create folder."})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": 1})
}

type createFileReq struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Overwrite bool   `json:"overwrite"`
}

// CreateFile writes a new file, refusing to clobber an existing one unless
// the caller confirms overwrite.
func (h *FileManagerHandler) CreateFile(c echo.Context) error {
	var req createFileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File name is required."})
	}
	full, err := h.resolve(path.Join(req.Path, req.Name))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	if !req.Overwrite {
		if _, serr := os.Stat(full); serr == nil {
			return c.JSON(http.StatusConflict, echo.Map{"message": "File already exists.", "exists": true})
		}
	}
	if err := os.WriteFile(full, []byte(req.Content), 0o644); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not write file."})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": 1})
}

// ReadFile returns a file's text content.
func (h *FileManagerHandler) ReadFile(c echo.Context) error {
	full, err := h.resolve(c.QueryParam("path"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "File not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not read file."})
	}
	return c.JSON(http.StatusOK, echo.Map{"content": string(data)})
}

type writeFileReq struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WriteFile replaces an existing file's content.
func (h *FileManagerHandler) WriteFile(c echo.Context) error {
	var req writeFileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	full, err := h.resolve(req.Path)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	if err := os.WriteFile(full, []byte(req.Content), 0o644); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not write file."})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": 1})
}

// Delete removes a file or directory tree.
func (h *FileManagerHandler) Delete(c echo.Context) error {
	clientPath := c.QueryParam("path")
	if clientPath == "" || path.Clean("/"+clientPath) == "/" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	full, err := h.resolve(clientPath)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid path."})
	}
	if _, serr := os.Stat(full); serr != nil {
		if errors.Is(serr, fs.ErrNotExist) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete item."})
	}
	if err := os.RemoveAll(full); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete item."})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": 1})
}
