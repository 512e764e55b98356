package write

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "c.txt")

	require.NoError(t, File(path, []byte("hi"), Options{MkdirParents: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestFileWithoutParentsFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "c.txt")
	assert.Error(t, File(path, []byte("hi"), Options{}))
}

func TestFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, File(path, []byte("#!/bin/sh\n"), Options{Mode: 0o755}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestAtomicFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, File(path, []byte("new"), Options{Atomic: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must not linger")
}

func TestStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")

	n, err := Stream(path, strings.NewReader("stream me"), Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "stream me", string(data))
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "deep", "leaf.sh"), []byte("#!/bin/sh\n"), 0o755))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(dst, src))

	data, err := os.ReadFile(filepath.Join(dst, "top.txt"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(data))

	info, err := os.Stat(filepath.Join(dst, "sub", "deep", "leaf.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}
