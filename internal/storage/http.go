package storage

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// HTTPOptions는 HTTP 저장소(data.commoncrawl.org 등) 설정입니다.
type HTTPOptions struct {
	Retries   int
	RetryWait time.Duration
	UserAgent string
}

// HTTPStore는 retryablehttp 기반의 읽기 전용 ObjectStore입니다.
type HTTPStore struct {
	client    *retryablehttp.Client
	userAgent string
}

func NewHTTPStore(opts HTTPOptions, logger *zap.SugaredLogger) *HTTPStore {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	if opts.RetryWait > 0 {
		client.RetryWaitMin = opts.RetryWait
		if client.RetryWaitMax < opts.RetryWait {
			client.RetryWaitMax = 4 * opts.RetryWait
		}
	}
	if logger != nil {
		client.Logger = zapLeveled{logger.Named("http")}
	} else {
		client.Logger = nil
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "ccwat/1.0"
	}
	return &HTTPStore{client: client, userAgent: ua}
}

func (h *HTTPStore) ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, errors.Wrapf(ErrRangeUnsatisfiable, "length %d", length)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", uri)
	}
	req.Header.Set("Range", rangeHeader(offset, length))
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", uri)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		return nil, errors.Wrapf(ErrRangeIgnored, "%s", uri)
	case http.StatusNotFound:
		return nil, NotFound(uri)
	case http.StatusRequestedRangeNotSatisfiable:
		return nil, errors.Wrapf(ErrRangeUnsatisfiable, "%s", uri)
	default:
		return nil, errors.Newf("get %s: unexpected status %s", uri, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read range body %s", uri)
	}
	return data, nil
}

func (h *HTTPStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s", uri)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", uri)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, NotFound(uri)
	default:
		resp.Body.Close()
		return nil, errors.Newf("get %s: unexpected status %s", uri, resp.Status)
	}
}

func (h *HTTPStore) Put(ctx context.Context, uri string, body io.ReadSeeker) error {
	return errors.Wrapf(ErrUnsupported, "put %s over http", uri)
}

// zapLeveled는 retryablehttp.LeveledLogger를 zap에 연결합니다.
type zapLeveled struct {
	l *zap.SugaredLogger
}

func (z zapLeveled) Error(msg string, kv ...interface{}) { z.l.Errorw(msg, kv...) }
func (z zapLeveled) Info(msg string, kv ...interface{})  { z.l.Debugw(msg, kv...) }
func (z zapLeveled) Debug(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
func (z zapLeveled) Warn(msg string, kv ...interface{})  { z.l.Warnw(msg, kv...) }
