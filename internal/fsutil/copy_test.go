package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCopyDir(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "top.txt"), "top")
	writeFile(t, filepath.Join(src, "nested", "inner.txt"), "inner")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "nested", "inner.txt"))
	require.NoError(t, err)
	require.Equal(t, "inner", string(data))
	require.FileExists(t, filepath.Join(dst, "top.txt"))
	require.DirExists(t, filepath.Join(dst, "empty"))
}

func TestCopyDirMissingSource(t *testing.T) {
	t.Parallel()

	err := CopyDir(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
}

func TestReplaceDirDoesNotMerge(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "new.txt"), "new")

	dst := filepath.Join(t.TempDir(), "dest")
	writeFile(t, filepath.Join(dst, "stale.txt"), "stale")

	require.NoError(t, ReplaceDir(src, dst))
	require.FileExists(t, filepath.Join(dst, "new.txt"))
	require.NoFileExists(t, filepath.Join(dst, "stale.txt"))
}
