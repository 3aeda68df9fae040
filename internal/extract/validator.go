package extract

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// Validator는 가져온 바이트가 완전한 레코드인지 판단합니다.
// 해석할 수 없는 바이트는 모두 Invalid입니다.
type Validator struct {
	extractor *commoncrawl.Extractor
}

func NewValidator(extractor *commoncrawl.Extractor) *Validator {
	return &Validator{extractor: extractor}
}

// Validate는 FetchResult를 해석해 출력 필드를 돌려줍니다.
// RangeOk가 실패하면 ErrValidation, StreamMiss는 ErrStreamMiss입니다.
func (v *Validator) Validate(item WorkItem, res FetchResult) (map[string]any, error) {
	switch res.Kind {
	case RangeOk:
		return v.validateRange(item, res.Data)
	case StreamOk:
		rec, err := commoncrawl.ParseRecord(res.Data)
		if err != nil {
			return nil, invalid("parse streamed record", err)
		}
		return v.extract(item, rec)
	case RangeInvalid:
		return nil, invalid(res.Reason, res.Err)
	case StreamMiss:
		if res.Err != nil {
			return nil, res.Err
		}
		return nil, errors.Wrapf(ErrStreamMiss, "%s", res.Reason)
	default:
		return nil, errors.AssertionFailedf("unknown fetch kind %d", res.Kind)
	}
}

func (v *Validator) validateRange(item WorkItem, data []byte) (map[string]any, error) {
	if int64(len(data)) != item.Length {
		return nil, invalid("length mismatch: got "+strconv.Itoa(len(data))+" want "+strconv.FormatInt(item.Length, 10), nil)
	}
	raw, err := commoncrawl.DecodeMember(data)
	if err != nil {
		return nil, invalid("decode gzip member", err)
	}
	rec, err := commoncrawl.ParseRecord(raw)
	if err != nil {
		return nil, invalid("parse WARC record", err)
	}
	return v.extract(item, rec)
}

func (v *Validator) extract(item WorkItem, rec *commoncrawl.Record) (map[string]any, error) {
	fields, err := v.extractor.Extract(rec)
	if err != nil {
		return nil, invalid("extract fields", err)
	}
	// 다른 레코드를 잘못 읽은 경우를 걸러냄
	if uri, _ := fields["target_uri"].(string); uri != "" && item.URL != "" && uri != item.URL {
		return nil, invalid("target uri mismatch: got "+uri, nil)
	}
	return fields, nil
}
