// Package sink writes extracted records as chunked JSON lines and ships
// finished chunks to remote storage.
package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/tiwari1302/commoncrawl/internal/extract"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// Uploader는 닫힌 청크를 원격 위치에 올립니다. storage.ObjectStore가 만족합니다.
type Uploader interface {
	Put(ctx context.Context, uri string, body io.ReadSeeker) error
}

type Options struct {
	LocalDir  string
	RemoteOut string
	ChunkSize int
	Compress  bool
	RunID     string
}

// Sink는 레코드를 받은 순서 그대로 청크 파일에 씁니다.
// Commit 한 번의 레코드는 서로 붙어서 기록됩니다.
type Sink struct {
	mu       sync.Mutex
	opts     Options
	uploader Uploader
	logger   *zap.SugaredLogger

	seq     int
	count   int
	path    string
	file    *os.File
	gz      *gzip.Writer
	buf     *bufio.Writer
	enc     *json.Encoder
	written int
	chunks  []string
	closed  bool
}

func New(opts Options, uploader Uploader, logger *zap.SugaredLogger) (*Sink, error) {
	if opts.ChunkSize <= 0 {
		return nil, errors.Newf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if opts.RemoteOut != "" && uploader == nil {
		return nil, errors.New("remote output configured without uploader")
	}
	if err := os.MkdirAll(opts.LocalDir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", opts.LocalDir)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Sink{opts: opts, uploader: uploader, logger: logger}, nil
}

func (s *Sink) chunkName(seq int) string {
	name := fmt.Sprintf("extracted_%s_%05d.jsonl", s.opts.RunID, seq)
	if s.opts.Compress {
		name += ".gz"
	}
	return name
}

// Commit은 records를 현재 청크에 덧붙입니다. 청크가 가득 차면 닫고 업로드합니다.
func (s *Sink) Commit(ctx context.Context, records []extract.ExtractedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.Mark(errors.New("sink closed"), extract.ErrWrite)
	}
	for i := range records {
		if s.file == nil {
			if err := s.openChunk(); err != nil {
				return errors.Mark(err, extract.ErrWrite)
			}
		}
		if err := s.enc.Encode(&records[i]); err != nil {
			return errors.Mark(errors.Wrapf(err, "write %s", s.path), extract.ErrWrite)
		}
		s.count++
		s.written++
		if s.count >= s.opts.ChunkSize {
			if err := s.closeChunk(ctx); err != nil {
				return errors.Mark(err, extract.ErrWrite)
			}
		}
	}
	return nil
}

// Close는 남은 청크를 닫고 업로드합니다. 여러 번 호출해도 됩니다.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	if err := s.closeChunk(ctx); err != nil {
		return errors.Mark(err, extract.ErrWrite)
	}
	return nil
}

// Written은 지금까지 받은 레코드 수입니다.
func (s *Sink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Chunks는 닫힌 청크 파일의 로컬 경로입니다.
func (s *Sink) Chunks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.chunks...)
}

func (s *Sink) openChunk() error {
	s.seq++
	s.path = filepath.Join(s.opts.LocalDir, s.chunkName(s.seq))
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "create chunk %s", s.path)
	}
	s.file = f

	var w io.Writer = f
	if s.opts.Compress {
		s.gz = gzip.NewWriter(f)
		w = s.gz
	}
	s.buf = bufio.NewWriterSize(w, 256*1024)
	s.enc = json.NewEncoder(s.buf)
	s.enc.SetEscapeHTML(false)
	s.count = 0
	return nil
}

func (s *Sink) closeChunk(ctx context.Context) error {
	path := s.path
	f := s.file
	s.file, s.enc = nil, nil

	err := s.buf.Flush()
	s.buf = nil
	if s.gz != nil {
		if cerr := s.gz.Close(); err == nil {
			err = cerr
		}
		s.gz = nil
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "close chunk %s", path)
	}
	s.chunks = append(s.chunks, path)
	s.logger.Infow("[출력] 청크 저장", "path", path, "records", s.count)

	if s.opts.RemoteOut == "" {
		return nil
	}
	// 실행이 취소되어도 이미 받은 레코드는 올림
	return s.upload(context.WithoutCancel(ctx), path)
}

func (s *Sink) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open chunk %s", path)
	}
	defer f.Close()

	uri := commoncrawl.JoinObjectURL(s.opts.RemoteOut, filepath.Base(path))
	if err := s.uploader.Put(ctx, uri, f); err != nil {
		return errors.Wrapf(err, "upload %s", uri)
	}
	s.logger.Infow("[출력] 업로드 완료", "uri", uri)
	return nil
}
