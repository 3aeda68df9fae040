// Package testutil builds small WAT and WARC files for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// WATEntry describes one WAT metadata record.
type WATEntry struct {
	TargetURI       string
	Title           string
	Status          int
	ContainerFile   string
	ContainerOffset int64
	Links           int
}

// WARCEntry describes one WARC response record with an HTML body.
type WARCEntry struct {
	TargetURI string
	HTML      string
}

// Span is the compressed position of a record inside a built file.
type Span struct {
	Offset int64
	Length int64
}

// WATRecord renders the uncompressed WARC metadata record for e.
func WATRecord(e WATEntry) []byte {
	links := make([]map[string]string, e.Links)
	for i := range links {
		links[i] = map[string]string{"path": "A@/href", "url": fmt.Sprintf("/link-%d", i)}
	}
	doc := map[string]any{
		"Container": map[string]any{
			"Filename":   e.ContainerFile,
			"Compressed": true,
			"Offset":     strconv.FormatInt(e.ContainerOffset, 10),
		},
		"Envelope": map[string]any{
			"Format": "WARC",
			"WARC-Header-Metadata": map[string]string{
				"WARC-Type":           "response",
				"WARC-Target-URI":     e.TargetURI,
				"WARC-Date":           "2024-03-01T00:00:00Z",
				"WARC-Payload-Digest": "sha1:PAYLOAD" + e.Title,
			},
			"Payload-Metadata": map[string]any{
				"Actual-Content-Type": "application/http; msgtype=response",
				"HTTP-Response-Metadata": map[string]any{
					"Response-Message": map[string]string{"Status": strconv.Itoa(e.Status)},
					"Entity-Digest":    "sha1:ENTITY" + e.Title,
					"HTML-Metadata": map[string]any{
						"Head":  map[string]any{"Title": e.Title},
						"Links": links,
					},
				},
			},
		},
	}
	block, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return warcRecord("metadata", e.TargetURI, "application/json", block)
}

// WARCRecord renders the uncompressed WARC response record for e.
func WARCRecord(e WARCEntry) []byte {
	block := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=utf-8\r\n\r\n" + e.HTML)
	return warcRecord("response", e.TargetURI, "application/http; msgtype=response", block)
}

// WarcInfo renders a warcinfo record as found at the start of every file.
func WarcInfo() []byte {
	return warcRecord("warcinfo", "", "application/warc-fields", []byte("software: test\r\n"))
}

func warcRecord(typ, uri, contentType string, block []byte) []byte {
	var b bytes.Buffer
	b.WriteString("WARC/1.0\r\n")
	b.WriteString("WARC-Type: " + typ + "\r\n")
	if uri != "" {
		b.WriteString("WARC-Target-URI: " + uri + "\r\n")
	}
	b.WriteString("WARC-Date: 2024-03-01T00:00:00Z\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(block)) + "\r\n")
	b.WriteString("\r\n")
	b.Write(block)
	b.WriteString("\r\n\r\n")
	return b.Bytes()
}

// Gzip compresses raw as a single gzip member.
func Gzip(raw []byte) []byte {
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	if _, err := zw.Write(raw); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return b.Bytes()
}

// BuildFile concatenates one gzip member per record and returns the
// position of each member.
func BuildFile(records ...[]byte) ([]byte, []Span) {
	var out bytes.Buffer
	spans := make([]Span, 0, len(records))
	for _, raw := range records {
		member := Gzip(raw)
		spans = append(spans, Span{Offset: int64(out.Len()), Length: int64(len(member))})
		out.Write(member)
	}
	return out.Bytes(), spans
}

// BuildWAT builds a WAT file that starts with a warcinfo record followed by
// one metadata record per entry. The returned spans skip the warcinfo record.
func BuildWAT(entries ...WATEntry) ([]byte, []Span) {
	records := [][]byte{WarcInfo()}
	for _, e := range entries {
		records = append(records, WATRecord(e))
	}
	data, spans := BuildFile(records...)
	return data, spans[1:]
}
