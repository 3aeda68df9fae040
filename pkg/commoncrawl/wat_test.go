package commoncrawl

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWAT = `{
  "Container": {"Filename": "CC-MAIN-1.warc.gz", "Compressed": true, "Offset": "12345",
    "Gzip-Metadata": {"Deflate-Length": "900"}},
  "Envelope": {
    "Format": "WARC",
    "WARC-Header-Metadata": {
      "WARC-Type": "response",
      "WARC-Target-URI": "https://example.com/",
      "WARC-Date": "2024-03-01T00:00:00Z",
      "WARC-Payload-Digest": "sha1:PAYLOAD"
    },
    "Payload-Metadata": {
      "Actual-Content-Type": "application/http; msgtype=response",
      "HTTP-Response-Metadata": {
        "Response-Message": {"Status": "301"},
        "Entity-Digest": "sha1:ENTITY",
        "HTML-Metadata": {
          "Head": {"Title": "Example Domain", "Metas": [{"name": "robots"}]},
          "Links": [{"url": "/a"}, {"url": "/b"}]
        }
      }
    }
  }
}`

func TestParseWAT(t *testing.T) {
	fields, err := ParseWAT([]byte(sampleWAT))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", fields["target_uri"])
	assert.Equal(t, "response", fields["warc_type"])
	assert.Equal(t, "2024-03-01T00:00:00Z", fields["warc_date"])
	assert.Equal(t, "application/http; msgtype=response", fields["content_type"])
	assert.Equal(t, 301, fields["http_status"])
	assert.Equal(t, 2, fields["link_count"])
	assert.Equal(t, "Example Domain", fields["title"])
	assert.Equal(t, "sha1:ENTITY", fields["entity_digest"])
	assert.Equal(t, "CC-MAIN-1.warc.gz", fields["container_filename"])
	assert.Equal(t, int64(12345), fields["container_offset"])

	head, ok := fields["head"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Example Domain", head["Title"])
}

func TestParseWAT_NonResponseRecords(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{
			name: "request",
			block: `{"Container": {"Filename": "x.warc.gz", "Offset": 77},
			  "Envelope": {"WARC-Header-Metadata": {"WARC-Type": "request", "WARC-Target-URI": "https://r.example.com/"},
			    "Payload-Metadata": {"Actual-Content-Type": "application/http; msgtype=request"}}}`,
		},
		{
			name: "warcinfo",
			block: `{"Envelope": {"WARC-Header-Metadata": {"WARC-Type": "warcinfo"},
			    "Payload-Metadata": {"Actual-Content-Type": "application/warc-fields"}}}`,
		},
		{
			name:  "no payload metadata",
			block: `{"Envelope": {"WARC-Header-Metadata": {"WARC-Type": "response"}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWAT([]byte(tt.block))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedRecord), "got %v", err)
		})
	}
}

func TestParseWAT_Invalid(t *testing.T) {
	_, err := ParseWAT([]byte(`{"Envelope": `))
	assert.True(t, errors.Is(err, ErrNotWAT))

	_, err = ParseWAT([]byte(`{"Container": {}}`))
	assert.True(t, errors.Is(err, ErrNotWAT))
}

func TestWATContainer(t *testing.T) {
	ref := WATContainer([]byte(sampleWAT))
	assert.True(t, ref.OK)
	assert.Equal(t, "CC-MAIN-1.warc.gz", ref.Filename)
	assert.Equal(t, int64(12345), ref.Offset)

	assert.False(t, WATContainer([]byte(`{"Envelope": {}}`)).OK)
	assert.False(t, WATContainer([]byte(`garbage`)).OK)
}
