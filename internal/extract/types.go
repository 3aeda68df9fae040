// Package extract fetches requested WAT/WARC records by offset, validates them
// and falls back to a single sequential pass over the file when range reads
// cannot be trusted.
package extract

import "fmt"

// WorkItem은 쿼리 결과의 한 행입니다. 식별자는 (WarcFilename, Offset)입니다.
type WorkItem struct {
	URL          string `json:"url"`
	WarcFilename string `json:"warc_filename"`
	Offset       int64  `json:"offset"`
	Length       int64  `json:"length"`
	SourceURL    string `json:"source_url"`
}

func (w WorkItem) Key() string {
	return fmt.Sprintf("%s@%d", w.WarcFilename, w.Offset)
}

// FileGroup은 같은 파일에 속한 WorkItem들입니다. Items는 Offset 오름차순입니다.
type FileGroup struct {
	WarcFilename string
	SourceURL    string
	Items        []WorkItem
}

// FetchKind는 FetchResult의 종류입니다.
type FetchKind int

const (
	RangeOk FetchKind = iota + 1
	RangeInvalid
	StreamOk
	StreamMiss
)

func (k FetchKind) String() string {
	switch k {
	case RangeOk:
		return "range_ok"
	case RangeInvalid:
		return "range_invalid"
	case StreamOk:
		return "stream_ok"
	case StreamMiss:
		return "stream_miss"
	default:
		return "unknown"
	}
}

// FetchResult는 WorkItem 하나의 바이트를 얻으려 한 결과입니다.
// RangeOk/StreamOk는 Data를, RangeInvalid/StreamMiss는 Reason을 채웁니다.
type FetchResult struct {
	Kind   FetchKind
	Data   []byte
	Reason string
	Err    error
}

// ExtractedRecord는 출력 한 줄입니다. WorkItem마다 최대 한 번 쓰입니다.
type ExtractedRecord struct {
	URL             string         `json:"url"`
	WarcFilename    string         `json:"warc_filename"`
	Offset          int64          `json:"offset"`
	Length          int64          `json:"length"`
	ExtractedFields map[string]any `json:"extracted_fields"`
}

func newRecord(item WorkItem, fields map[string]any) ExtractedRecord {
	return ExtractedRecord{
		URL:             item.URL,
		WarcFilename:    item.WarcFilename,
		Offset:          item.Offset,
		Length:          item.Length,
		ExtractedFields: fields,
	}
}

// Failure는 WorkItem의 최종 실패입니다.
type Failure struct {
	Item WorkItem
	Kind string
	Err  error
}
