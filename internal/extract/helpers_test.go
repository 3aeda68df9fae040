package extract

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tiwari1302/commoncrawl/internal/testutil"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// memSink는 Commit 호출을 그대로 기록합니다.
type memSink struct {
	mu      sync.Mutex
	commits [][]ExtractedRecord
	err     error
}

func (m *memSink) Commit(ctx context.Context, records []ExtractedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.commits = append(m.commits, append([]ExtractedRecord(nil), records...))
	return nil
}

func (m *memSink) all() []ExtractedRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ExtractedRecord
	for _, c := range m.commits {
		out = append(out, c...)
	}
	return out
}

type memCheckpoint struct {
	mu   sync.Mutex
	done map[string]bool
}

func (m *memCheckpoint) Completed(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done[name]
}

func (m *memCheckpoint) Mark(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done[name] = true
	return nil
}

// watFile은 n개의 레코드를 가진 WAT 파일을 만들고 대응하는 WorkItem을 반환합니다.
func watFile(t *testing.T, store *testutil.MemStore, name string, n int) []WorkItem {
	t.Helper()
	entries := make([]testutil.WATEntry, n)
	for i := range entries {
		entries[i] = testutil.WATEntry{
			TargetURI:       fmt.Sprintf("https://%s.example.com/page/%d", name, i),
			Title:           fmt.Sprintf("%s title %d", name, i),
			Status:          200,
			ContainerFile:   name + ".warc.gz",
			ContainerOffset: int64(1000 * (i + 1)),
			Links:           i,
		}
	}
	data, spans := testutil.BuildWAT(entries...)
	uri := "s3://commoncrawl/" + name + ".warc.wat.gz"
	store.Add(uri, data)

	items := make([]WorkItem, n)
	for i, sp := range spans {
		items[i] = WorkItem{
			URL:          entries[i].TargetURI,
			WarcFilename: name + ".warc.wat.gz",
			Offset:       sp.Offset,
			Length:       sp.Length,
			SourceURL:    uri,
		}
	}
	return items
}

func newTestCoordinator(t *testing.T, store *testutil.MemStore, sink Sink, opts Options) *Coordinator {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	return NewCoordinator(
		opts,
		NewRangeFetcher(store),
		NewValidator(commoncrawl.NewExtractor(commoncrawl.ExtractConfig{MaxText: 200})),
		NewFallbackStreamer(store, false, logger),
		sink,
		logger,
	)
}

// requireAccounted는 모든 WorkItem이 정확히 한 번 내보내졌거나 실패했는지 확인합니다.
func requireAccounted(t *testing.T, items []WorkItem, sink *memSink, summary *Summary) {
	t.Helper()
	emitted := map[string]int{}
	for _, r := range sink.all() {
		emitted[fmt.Sprintf("%s@%d", r.WarcFilename, r.Offset)]++
	}
	failed := map[string]int{}
	for _, f := range summary.Failures {
		failed[f.Item.Key()]++
	}
	for _, item := range items {
		e, f := emitted[item.Key()], failed[item.Key()]
		require.Equal(t, 1, e+f, "item %s emitted=%d failed=%d", item.Key(), e, f)
	}
	require.Equal(t, summary.Items, summary.Emitted+summary.Failed+summary.Skipped+summary.Duplicates)
}
