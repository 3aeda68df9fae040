package extract

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTransport: 객체에 접근할 수 없음. 파일 그룹 전체가 실패합니다.
	ErrTransport = errors.New("transport error")
	// ErrValidation: range 바이트를 레코드로 해석할 수 없음. 내부에서 fallback으로 복구합니다.
	ErrValidation = errors.New("validation error")
	// ErrStreamMiss: 전체 스트림을 한 번 훑었지만 찾지 못함.
	ErrStreamMiss = errors.New("record not found in stream")
	// ErrWrite: 출력 실패. 실행 전체를 중단합니다.
	ErrWrite = errors.New("write error")
	// ErrCanceled: 실행이 취소되어 처리하지 못함.
	ErrCanceled = errors.New("canceled")
)

// Kind는 실패를 요약용 문자열로 분류합니다.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrStreamMiss):
		return "stream_miss"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}

func markTransport(err error, format string, args ...interface{}) error {
	if errors.IsAny(err, context.Canceled, context.DeadlineExceeded) {
		return errors.Mark(errors.Wrapf(err, format, args...), ErrCanceled)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrTransport)
}

func invalid(reason string, cause error) error {
	if cause == nil {
		return errors.Wrap(ErrValidation, reason)
	}
	return errors.Mark(errors.Wrap(cause, reason), ErrValidation)
}
