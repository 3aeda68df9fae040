package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/tiwari1302/commoncrawl/internal/storage"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// buildStore는 설정에 맞는 저장소 라우터를 만듭니다. 원격 저장소에만 요청 속도 제한을 겁니다.
func buildStore(ctx context.Context, cfg *commoncrawl.Config, log *zap.SugaredLogger) (storage.ObjectStore, error) {
	s3, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:      cfg.Storage.Region,
		Endpoint:    cfg.Storage.Endpoint,
		Anonymous:   cfg.Storage.Anonymous,
		MaxAttempts: cfg.Storage.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	httpStore := storage.NewHTTPStore(storage.HTTPOptions{
		Retries:   cfg.Storage.HTTPRetries,
		RetryWait: cfg.Storage.HTTPRetryWait,
	}, log)

	rps := cfg.Storage.RequestsPerSecond
	return &storage.Router{
		S3:   storage.NewThrottle(s3, rps),
		HTTP: storage.NewThrottle(httpStore, rps),
		File: storage.NewFileStore(),
	}, nil
}
