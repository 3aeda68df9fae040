package commoncrawl

import (
	"bufio"
	"bytes"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnsupportedRecord = errors.New("unsupported record type")
	ErrNoHTTPBody        = errors.New("HTTP header/body separator not found")
)

// Extractor는 WARC 레코드에서 출력 필드를 뽑습니다.
type Extractor struct {
	KeepHTML        bool
	MaxText         int
	RemoveSelectors RemoveSelectors
}

func NewExtractor(cfg ExtractConfig) *Extractor {
	return &Extractor{
		KeepHTML:        cfg.KeepHTML,
		MaxText:         cfg.MaxText,
		RemoveSelectors: cfg.RemoveSelectors,
	}
}

// IsWAT는 레코드 블록이 WAT JSON인지 판단합니다.
func IsWAT(rec *Record) bool {
	return rec.Type() == "metadata" && strings.HasPrefix(rec.ContentType(), "application/json")
}

// Extract는 WAT metadata 레코드와 WARC response 레코드를 지원합니다.
func (e *Extractor) Extract(rec *Record) (map[string]any, error) {
	switch {
	case IsWAT(rec):
		fields, err := ParseWAT(rec.Block)
		if err != nil {
			return nil, err
		}
		if fields["target_uri"] == "" && rec.TargetURI() != "" {
			fields["target_uri"] = rec.TargetURI()
		}
		return fields, nil
	case rec.Type() == "response":
		return e.extractResponse(rec)
	default:
		return nil, errors.Wrapf(ErrUnsupportedRecord, "WARC-Type %q, Content-Type %q", rec.Type(), rec.ContentType())
	}
}

func (e *Extractor) extractResponse(rec *Record) (map[string]any, error) {
	fields := map[string]any{
		"target_uri": rec.TargetURI(),
		"warc_type":  rec.Type(),
		"warc_date":  rec.Date(),
	}
	if digest := rec.Header["WARC-Payload-Digest"]; digest != "" {
		fields["entity_digest"] = digest
	}

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(rec.Block)), nil)
	if err != nil {
		return nil, errors.Wrap(ErrNoHTTPBody, err.Error())
	}
	defer resp.Body.Close()
	fields["http_status"] = resp.StatusCode
	contentType := resp.Header.Get("Content-Type")
	fields["content_type"] = contentType

	// 헤더와 본문 분리
	headerEnd := bytes.Index(rec.Block, []byte("\r\n\r\n"))
	sepLen := 4
	if headerEnd == -1 {
		headerEnd = bytes.Index(rec.Block, []byte("\n\n"))
		sepLen = 2
		if headerEnd == -1 {
			return nil, ErrNoHTTPBody
		}
	}
	body := rec.Block[headerEnd+sepLen:]

	if !strings.Contains(strings.ToLower(contentType), "html") {
		return fields, nil
	}

	title, text, err := HTMLText(body, e.MaxText)
	if err != nil {
		return nil, errors.Wrap(err, "parse HTML")
	}
	if title != "" {
		fields["title"] = title
	}
	fields["text"] = text

	if e.KeepHTML {
		cleaned, err := CleanHTML(body, e.RemoveSelectors)
		if err != nil {
			return nil, errors.Wrap(err, "clean HTML")
		}
		fields["html"] = string(cleaned)
	}
	return fields, nil
}
