// Package source reads exported query results (CSV or JSON lines) into
// work items.
package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"

	"github.com/tiwari1302/commoncrawl/internal/extract"
	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// Format은 입력 파일 형식입니다.
type Format string

const (
	FormatAuto  Format = ""
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ErrInput은 입력 파일이 잘못된 경우입니다.
var ErrInput = errors.New("invalid input")

var aliases = map[string]string{
	"warc_record_offset": "offset",
	"warc_record_length": "length",
	"wat_url":            "wat_s3_url",
}

func canonical(column string) string {
	c := strings.ToLower(strings.TrimSpace(column))
	if a, ok := aliases[c]; ok {
		return a
	}
	return c
}

// Resolver는 행의 warc_filename과 wat_s3_url로 실제로 읽을 객체 URL을 정합니다.
type Resolver struct {
	BaseURL string
	Kind    string
}

// Resolve는 wat_s3_url이 있으면 그것을, 없으면 warc_filename에서 만든 URL을 반환합니다.
// Kind가 wat이면 WARC 경로를 WAT 경로로 바꿉니다.
func (r Resolver) Resolve(warcFilename, watURL string) string {
	if watURL != "" {
		return commoncrawl.ResolveObjectURL(r.BaseURL, watURL)
	}
	name := warcFilename
	if r.Kind != commoncrawl.SourceKindWARC {
		name = commoncrawl.NormalizeWatURL(name)
	}
	return commoncrawl.ResolveObjectURL(r.BaseURL, name)
}

// DetectFormat은 확장자로 형식을 추정합니다. .gz는 무시합니다.
func DetectFormat(location string) (Format, error) {
	name := strings.TrimSuffix(strings.ToLower(location), ".gz")
	switch {
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".jsonl"), strings.HasSuffix(name, ".ndjson"), strings.HasSuffix(name, ".json"):
		return FormatJSONL, nil
	default:
		return FormatAuto, errors.WithHint(
			errors.Wrapf(ErrInput, "cannot infer format of %q", location),
			"pass --format csv or --format jsonl")
	}
}

// Opener는 입력 파일을 여는 데 필요한 연산입니다.
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Load는 location(로컬 경로 또는 객체 URL)을 열어 WorkItem을 읽습니다.
func Load(ctx context.Context, store Opener, location string, format Format, resolver Resolver) ([]extract.WorkItem, error) {
	if format == FormatAuto {
		f, err := DetectFormat(location)
		if err != nil {
			return nil, err
		}
		format = f
	}

	rc, err := store.Open(ctx, location)
	if err != nil {
		return nil, errors.Wrapf(err, "open input %s", location)
	}
	defer rc.Close()

	var r io.Reader = rc
	if strings.HasSuffix(strings.ToLower(location), ".gz") {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "gunzip input %s", location), ErrInput)
		}
		defer gz.Close()
		r = gz
	}
	return ReadItems(r, format, resolver)
}

// ReadItems는 r에서 WorkItem을 읽습니다. 필수 열은 url, warc_filename, offset, length입니다.
func ReadItems(r io.Reader, format Format, resolver Resolver) ([]extract.WorkItem, error) {
	switch format {
	case FormatCSV:
		return readCSV(r, resolver)
	case FormatJSONL:
		return readJSONL(r, resolver)
	default:
		return nil, errors.Wrapf(ErrInput, "unknown format %q", format)
	}
}

func readCSV(r io.Reader, resolver Resolver) ([]extract.WorkItem, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read csv header"), ErrInput)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		// 엑셀이 붙이는 BOM 제거
		h = strings.TrimPrefix(h, "\ufeff")
		if _, dup := cols[canonical(h)]; !dup {
			cols[canonical(h)] = i
		}
	}
	for _, need := range []string{"url", "warc_filename", "offset", "length"} {
		if _, ok := cols[need]; !ok {
			return nil, errors.Wrapf(ErrInput, "csv header missing column %q", need)
		}
	}

	var items []extract.WorkItem
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "csv line %d", line), ErrInput)
		}
		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		item, err := buildItem(get, resolver)
		if err != nil {
			return nil, errors.Wrapf(err, "csv line %d", line)
		}
		items = append(items, item)
	}
	return items, nil
}

func readJSONL(r io.Reader, resolver Resolver) ([]extract.WorkItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var items []extract.WorkItem
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var row map[string]any
		if err := dec.Decode(&row); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "jsonl line %d", line), ErrInput)
		}
		fields := make(map[string]string, len(row))
		for k, v := range row {
			key := canonical(k)
			if _, dup := fields[key]; dup {
				continue
			}
			switch val := v.(type) {
			case string:
				fields[key] = strings.TrimSpace(val)
			case json.Number:
				fields[key] = val.String()
			case nil:
			default:
				return nil, errors.Wrapf(ErrInput, "jsonl line %d: field %q has unsupported type %T", line, k, v)
			}
		}
		item, err := buildItem(func(key string) string { return fields[key] }, resolver)
		if err != nil {
			return nil, errors.Wrapf(err, "jsonl line %d", line)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read jsonl"), ErrInput)
	}
	return items, nil
}

func buildItem(get func(string) string, resolver Resolver) (extract.WorkItem, error) {
	item := extract.WorkItem{
		URL:          get("url"),
		WarcFilename: get("warc_filename"),
	}
	if item.WarcFilename == "" {
		return item, errors.Wrap(ErrInput, "empty warc_filename")
	}

	var err error
	if item.Offset, err = parseInt(get("offset")); err != nil || item.Offset < 0 {
		return item, errors.Wrapf(ErrInput, "bad offset %q", get("offset"))
	}
	if item.Length, err = parseInt(get("length")); err != nil {
		return item, errors.Wrapf(ErrInput, "bad length %q", get("length"))
	}
	item.SourceURL = resolver.Resolve(item.WarcFilename, get("wat_s3_url"))
	return item, nil
}

// Athena CSV는 정수도 "123" 또는 "123.0"으로 내보낼 수 있음
func parseInt(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, errors.Newf("not an integer: %q", s)
	}
	return int64(f), nil
}
