package commoncrawl

import (
	"bytes"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

func gzipBytes(raw []byte) []byte {
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	_, _ = zw.Write(raw)
	_ = zw.Close()
	return b.Bytes()
}

func rawRecord(typ, uri, contentType, block string) []byte {
	var b bytes.Buffer
	b.WriteString("WARC/1.0\r\n")
	b.WriteString("WARC-Type: " + typ + "\r\n")
	if uri != "" {
		b.WriteString("WARC-Target-URI: " + uri + "\r\n")
	}
	b.WriteString("WARC-Date: 2024-03-01T00:00:00Z\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(block)) + "\r\n\r\n")
	b.WriteString(block)
	b.WriteString("\r\n\r\n")
	return b.Bytes()
}
