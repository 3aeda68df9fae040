package storage

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// Router는 URI 스킴에 따라 저장소를 고릅니다.
// s3:// → S3, http(s):// → HTTP, 나머지 → 로컬 파일.
type Router struct {
	S3   ObjectStore
	HTTP ObjectStore
	File ObjectStore
}

func (r *Router) pick(uri string) (ObjectStore, error) {
	var (
		store ObjectStore
		name  string
	)
	switch {
	case strings.HasPrefix(uri, "s3://"):
		store, name = r.S3, "s3"
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		store, name = r.HTTP, "http"
	case strings.Contains(uri, "://") && !strings.HasPrefix(uri, "file://"):
		return nil, errors.Wrapf(ErrUnsupported, "scheme of %q", uri)
	default:
		store, name = r.File, "file"
	}
	if store == nil {
		return nil, errors.Wrapf(ErrUnsupported, "%s storage not configured for %q", name, uri)
	}
	return store, nil
}

func (r *Router) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	s, err := r.pick(uri)
	if err != nil {
		return nil, err
	}
	return s.ReadRange(ctx, uri, offset, length)
}

func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	s, err := r.pick(uri)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, uri)
}

func (r *Router) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	s, err := r.pick(uri)
	if err != nil {
		return err
	}
	return s.Put(ctx, uri, body)
}

// Throttle은 원격 요청 수를 초당 rps로 제한합니다.
// Common Crawl 버킷은 짧은 시간에 요청이 몰리면 503 SlowDown으로 응답합니다.
type Throttle struct {
	next ObjectStore
	lim  *rate.Limiter
}

// NewThrottle은 rps가 0 이하이면 next를 그대로 반환합니다.
func NewThrottle(next ObjectStore, rps float64) ObjectStore {
	if rps <= 0 {
		return next
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Throttle{next: next, lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *Throttle) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	if err := t.lim.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit")
	}
	return t.next.ReadRange(ctx, uri, offset, length)
}

func (t *Throttle) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := t.lim.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit")
	}
	return t.next.Open(ctx, uri)
}

func (t *Throttle) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	if err := t.lim.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limit")
	}
	return t.next.Put(ctx, uri, body)
}
