package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/tiwari1302/commoncrawl/internal/storage"
)

// MemStore is an in-memory object store that counts calls per object.
type MemStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	rangeReads map[string]int
	opens      map[string]int
	puts       map[string][]byte

	// Override lets a test replace the bytes returned for a range read.
	Override func(uri string, offset, length int64) ([]byte, bool)
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects:    map[string][]byte{},
		rangeReads: map[string]int{},
		opens:      map[string]int{},
		puts:       map[string][]byte{},
	}
}

func (m *MemStore) Add(uri string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[uri] = data
}

func (m *MemStore) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.rangeReads[uri]++
	data, ok := m.objects[uri]
	override := m.Override
	m.mu.Unlock()

	if !ok {
		return nil, storage.NotFound(uri)
	}
	if override != nil {
		if b, ok := override(uri, offset, length); ok {
			return b, nil
		}
	}
	if offset >= int64(len(data)) {
		return nil, storage.ErrRangeUnsatisfiable
	}
	end := offset + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return bytes.Clone(data[offset:end]), nil
}

func (m *MemStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens[uri]++
	data, ok := m.objects[uri]
	if !ok {
		return nil, storage.NotFound(uri)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemStore) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts[uri] = data
	return nil
}

func (m *MemStore) RangeReads(uri string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rangeReads[uri]
}

func (m *MemStore) TotalRangeReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.rangeReads {
		n += c
	}
	return n
}

func (m *MemStore) Opens(uri string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[uri]
}

func (m *MemStore) Puts() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.puts))
	for k, v := range m.puts {
		out[k] = v
	}
	return out
}
