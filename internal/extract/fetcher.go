package extract

import (
	"context"
	"io"

	"github.com/tiwari1302/commoncrawl/internal/storage"
)

// Source는 추출에 필요한 읽기 연산입니다. storage.ObjectStore가 만족합니다.
type Source interface {
	ReadRange(ctx context.Context, uri string, offset, length int64) ([]byte, error)
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// RangeFetcher는 WorkItem 하나에 대해 range 요청을 한 번 보냅니다.
// 전송 재시도는 저장소 클라이언트의 정책에 맡깁니다.
type RangeFetcher struct {
	src Source
}

func NewRangeFetcher(src Source) *RangeFetcher {
	return &RangeFetcher{src: src}
}

// Fetch는 RangeOk(바이트) 또는 RangeInvalid(저장소가 범위를 거부한 경우)를 반환합니다.
// 그 밖의 실패는 ErrTransport로 표시된 오류입니다.
func (f *RangeFetcher) Fetch(ctx context.Context, uri string, item WorkItem) (FetchResult, error) {
	if item.Length <= 0 {
		return FetchResult{Kind: RangeInvalid, Reason: "non-positive length"}, nil
	}
	data, err := f.src.ReadRange(ctx, uri, item.Offset, item.Length)
	if err != nil {
		if storage.IsRangeRejected(err) {
			return FetchResult{Kind: RangeInvalid, Reason: err.Error(), Err: err}, nil
		}
		return FetchResult{}, markTransport(err, "range read %s@%d", uri, item.Offset)
	}
	return FetchResult{Kind: RangeOk, Data: data}, nil
}
