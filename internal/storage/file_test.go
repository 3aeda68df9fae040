package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obj.bin")
	require.NoError(t, os.WriteFile(path, object, 0644))
	fs := NewFileStore()
	ctx := context.Background()

	data, err := fs.ReadRange(ctx, path, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "012", string(data))

	// file:// 도 같은 경로
	data, err = fs.ReadRange(ctx, "file://"+path, 34, 10)
	require.NoError(t, err)
	assert.Equal(t, "yz", string(data))

	_, err = fs.ReadRange(ctx, path, int64(len(object)), 1)
	assert.True(t, errors.Is(err, ErrRangeUnsatisfiable))

	_, err = fs.ReadRange(ctx, filepath.Join(dir, "missing"), 0, 1)
	assert.True(t, errors.Is(err, ErrNotFound))

	rc, err := fs.Open(ctx, path)
	require.NoError(t, err)
	all, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, object, all)
}

func TestFileStore_Put(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.jsonl")

	require.NoError(t, NewFileStore().Put(context.Background(), target, bytes.NewReader([]byte("line\n"))))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(got))

	_, err = os.Stat(target + ".part")
	assert.True(t, os.IsNotExist(err))
}
