package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// FileStore는 로컬 경로와 file:// URI를 다룹니다.
type FileStore struct{}

func NewFileStore() *FileStore { return &FileStore{} }

func localPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (FileStore) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, errors.Wrapf(ErrRangeUnsatisfiable, "length %d", length)
	}
	f, err := openLocal(uri)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", uri)
	}
	if offset >= info.Size() {
		return nil, errors.Wrapf(ErrRangeUnsatisfiable, "%s: offset %d beyond size %d", uri, offset, info.Size())
	}

	// 범위가 파일 끝을 넘으면 S3처럼 남은 부분만 돌려줌
	data, err := io.ReadAll(io.NewSectionReader(f, offset, length))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", uri)
	}
	return data, nil
}

func (FileStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	return openLocal(uri)
}

func (FileStore) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	path := localPath(uri)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrapf(err, "create dir for %s", path)
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "rename %s", tmp)
}

func openLocal(uri string) (*os.File, error) {
	path := localPath(uri)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}
