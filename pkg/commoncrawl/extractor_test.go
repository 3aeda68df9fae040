package commoncrawl

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title> Sample </title><script>var x = 1;</script></head>
<body data-id="1"><div class="ad-banner">buy now</div><p onclick="x()">Hello
   world</p><!-- hidden --></body></html>`

func TestExtractor_WATRecord(t *testing.T) {
	raw := rawRecord("metadata", "https://example.com/", "application/json", sampleWAT)
	rec, err := ParseRecord(raw)
	require.NoError(t, err)
	require.True(t, IsWAT(rec))

	fields, err := NewExtractor(ExtractConfig{}).Extract(rec)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", fields["target_uri"])
	assert.Equal(t, "Example Domain", fields["title"])
}

func TestExtractor_ResponseRecord(t *testing.T) {
	block := "HTTP/1.1 200 OK\r\nContent-Type: text/html; charset=utf-8\r\n\r\n" + samplePage
	rec, err := ParseRecord(rawRecord("response", "https://example.com/p", "application/http; msgtype=response", block))
	require.NoError(t, err)

	e := NewExtractor(ExtractConfig{
		KeepHTML: true,
		MaxText:  5,
		RemoveSelectors: RemoveSelectors{
			ClassKeywords: []string{"^ad-"},
		},
	})
	fields, err := e.Extract(rec)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/p", fields["target_uri"])
	assert.Equal(t, 200, fields["http_status"])
	assert.Equal(t, "text/html; charset=utf-8", fields["content_type"])
	assert.Equal(t, "Sample", fields["title"])
	assert.Equal(t, "buy n", fields["text"])

	html, ok := fields["html"].(string)
	require.True(t, ok)
	assert.NotContains(t, html, "ad-banner")
	assert.NotContains(t, html, "onclick")
	assert.NotContains(t, html, "data-id")
	assert.NotContains(t, html, "hidden")
	assert.Contains(t, html, "Hello world")
}

func TestExtractor_NonHTMLResponse(t *testing.T) {
	block := "HTTP/1.1 200 OK\r\nContent-Type: application/pdf\r\n\r\n%PDF-1.4"
	rec, err := ParseRecord(rawRecord("response", "https://example.com/x.pdf", "application/http; msgtype=response", block))
	require.NoError(t, err)

	fields, err := NewExtractor(ExtractConfig{}).Extract(rec)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", fields["content_type"])
	assert.NotContains(t, fields, "text")
}

func TestExtractor_Unsupported(t *testing.T) {
	rec, err := ParseRecord(rawRecord("request", "https://example.com/", "application/http; msgtype=request", "GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	_, err = NewExtractor(ExtractConfig{}).Extract(rec)
	assert.True(t, errors.Is(err, ErrUnsupportedRecord))
}
