package commoncrawl

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	h := ParseHeader([]string{
		"WARC-Type: response",
		"WARC-Target-URI: https://example.com/a:b",
		"no colon here",
	})
	assert.Equal(t, "response", h["WARC-Type"])
	assert.Equal(t, "https://example.com/a:b", h["WARC-Target-URI"])
	assert.Len(t, h, 2)
}

func TestReadRecord_Sequence(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(rawRecord("warcinfo", "", "application/warc-fields", "x: y\r\n"))
	buf.Write(rawRecord("response", "https://example.com/", "application/http; msgtype=response", "HTTP/1.1 200 OK\r\n\r\nbody"))

	r := bufio.NewReader(&buf)
	first, err := ReadRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "warcinfo", first.Type())
	assert.Equal(t, "WARC/1.0", first.Version)

	second, err := ReadRecord(r)
	require.NoError(t, err)
	assert.Equal(t, "response", second.Type())
	assert.Equal(t, "https://example.com/", second.TargetURI())
	assert.Equal(t, "application/http; msgtype=response", second.ContentType())
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\nbody", string(second.Block))

	_, err = ReadRecord(r)
	assert.Equal(t, io.EOF, err)
}

func TestParseRecord_Errors(t *testing.T) {
	good := rawRecord("response", "https://example.com/", "text/plain", "hello")

	_, err := ParseRecord(good)
	require.NoError(t, err)

	_, err = ParseRecord(append(append([]byte{}, good...), []byte("WARC/1.0\r\n")...))
	assert.True(t, errors.Is(err, ErrTrailingData))

	_, err = ParseRecord(good[:len(good)-8])
	assert.True(t, errors.Is(err, ErrShortBlock))

	_, err = ParseRecord([]byte("{\"not\": \"warc\"}\n"))
	assert.True(t, errors.Is(err, ErrNotWARC))

	_, err = ParseRecord([]byte("WARC/1.0\r\nWARC-Type: response\r\n\r\n"))
	assert.True(t, errors.Is(err, ErrNoContentLength))

	_, err = ParseRecord(nil)
	assert.True(t, errors.Is(err, ErrNotWARC))
}

func TestParseRecord_OversizedContentLength(t *testing.T) {
	raw := []byte("WARC/1.0\r\nWARC-Type: metadata\r\nContent-Length: 999999999999999\r\n\r\n{}")

	require.NotPanics(t, func() {
		_, err := ParseRecord(raw)
		assert.True(t, errors.Is(err, ErrShortBlock), "got %v", err)
	})
}

func TestReadRecord_ContentLengthBeyondStream(t *testing.T) {
	raw := "WARC/1.0\r\nWARC-Type: response\r\nContent-Length: 1073741824\r\n\r\nshort"

	_, err := ReadRecord(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortBlock))
}
