// Package storage reads and writes objects on S3, HTTP and the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound: 객체가 없음 (영구 실패).
	ErrNotFound = errors.New("object not found")
	// ErrRangeUnsatisfiable: 요청 범위가 객체 크기를 벗어남.
	ErrRangeUnsatisfiable = errors.New("range not satisfiable")
	// ErrRangeIgnored: 서버가 Range 헤더를 무시하고 전체 객체를 보냄.
	ErrRangeIgnored = errors.New("range request ignored by server")
	// ErrUnsupported: 해당 저장소가 지원하지 않는 작업.
	ErrUnsupported = errors.New("operation not supported")
)

// ObjectStore는 추출 파이프라인이 쓰는 객체 저장소 연산입니다.
type ObjectStore interface {
	// ReadRange는 [offset, offset+length) 범위를 한 번의 요청으로 읽습니다.
	ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error)
	// Open은 객체 전체를 순차 스트림으로 엽니다. 호출자가 닫아야 합니다.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	// Put은 body를 uri에 업로드합니다.
	Put(ctx context.Context, uri string, body io.ReadSeeker) error
}

// NotFound는 uri를 담은 ErrNotFound를 만듭니다.
func NotFound(uri string) error {
	return errors.Wrapf(ErrNotFound, "%s", uri)
}

// IsRangeRejected는 범위 읽기 자체가 쓸 수 없는 경우입니다. 전송 실패와 달리 전체 스트림으로 대체할 수 있습니다.
func IsRangeRejected(err error) bool {
	return errors.IsAny(err, ErrRangeUnsatisfiable, ErrRangeIgnored)
}

func rangeHeader(offset, length int64) string {
	// HTTP Range의 끝 위치는 포함(inclusive)
	return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
}
