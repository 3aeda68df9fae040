package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint(t *testing.T) {
	dir := t.TempDir()

	cp, err := OpenCheckpoint(dir)
	require.NoError(t, err)
	assert.False(t, cp.Completed("a.warc.gz"))

	require.NoError(t, cp.Mark("a.warc.gz"))
	require.NoError(t, cp.Mark("b.warc.gz"))
	require.NoError(t, cp.Mark("a.warc.gz"))
	assert.True(t, cp.Completed("a.warc.gz"))
	assert.Equal(t, 2, cp.Len())

	raw, err := os.ReadFile(filepath.Join(dir, CheckpointFile))
	require.NoError(t, err)
	assert.Equal(t, "a.warc.gz\nb.warc.gz\n", string(raw))

	// 다시 열면 이전 기록을 읽음
	reopened, err := OpenCheckpoint(dir)
	require.NoError(t, err)
	assert.True(t, reopened.Completed("b.warc.gz"))
	assert.False(t, reopened.Completed("c.warc.gz"))
}
