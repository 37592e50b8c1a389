package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFilesSkipsDenylist(t *testing.T) {
	root := t.TempDir()

	write := func(rel string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	write("index.html")
	write("js/app.js")
	write(".env")
	write("package-lock.json")
	write("node_modules/lib/index.js")
	write(".git/HEAD")
	write("_backup/old.txt")

	files, err := collectFiles(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"index.html", "js/app.js"}, files)
}

func TestCollectFilesUsesSlashPaths(t *testing.T) {
	root := t.TempDir()
	full := filepath.Join(root, "a", "b", "c.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))

	files, err := collectFiles(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a/b/c.txt", files[0])
}
