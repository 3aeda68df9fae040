package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiwari1302/commoncrawl/internal/storage"
	"github.com/tiwari1302/commoncrawl/internal/testutil"
)

const warcPath = "crawl-data/CC-MAIN-2024-10/segments/1/warc/CC-MAIN-1-00001.warc.gz"

var resolver = Resolver{BaseURL: "s3://commoncrawl/", Kind: "wat"}

func TestReadItems_CSV(t *testing.T) {
	in := "url,warc_filename,warc_record_offset,warc_record_length,wat_s3_url\n" +
		"https://a.example.com/," + warcPath + ",100,50,\n" +
		"https://b.example.com/," + warcPath + ",\"500\",60.0,s3://mirror/b.wat.gz\n"

	items, err := ReadItems(strings.NewReader(in), FormatCSV, resolver)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://a.example.com/", items[0].URL)
	assert.Equal(t, warcPath, items[0].WarcFilename)
	assert.Equal(t, int64(100), items[0].Offset)
	assert.Equal(t, int64(50), items[0].Length)
	assert.Equal(t, "s3://commoncrawl/crawl-data/CC-MAIN-2024-10/segments/1/wat/CC-MAIN-1-00001.warc.wat.gz", items[0].SourceURL)

	assert.Equal(t, int64(500), items[1].Offset)
	assert.Equal(t, int64(60), items[1].Length)
	assert.Equal(t, "s3://mirror/b.wat.gz", items[1].SourceURL)
}

func TestReadItems_CSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing column": "url,warc_filename,offset\nx,y,1\n",
		"bad offset":     "url,warc_filename,offset,length\nx,y,abc,1\n",
		"negative":       "url,warc_filename,offset,length\nx,y,-1,1\n",
		"no filename":    "url,warc_filename,offset,length\nx,,1,1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadItems(strings.NewReader(in), FormatCSV, resolver)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInput))
		})
	}
}

func TestReadItems_JSONL(t *testing.T) {
	in := `{"url": "https://a.example.com/", "warc_filename": "` + warcPath + `", "offset": 100, "length": 50}

{"url": "https://b.example.com/", "warc_filename": "` + warcPath + `", "offset": "7", "length": "8", "wat_url": "https://data.commoncrawl.org/x.wat.gz"}
`
	items, err := ReadItems(strings.NewReader(in), FormatJSONL, Resolver{BaseURL: "https://data.commoncrawl.org/", Kind: "warc"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "https://data.commoncrawl.org/"+warcPath, items[0].SourceURL)
	assert.Equal(t, int64(7), items[1].Offset)
	assert.Equal(t, "https://data.commoncrawl.org/x.wat.gz", items[1].SourceURL)

	_, err = ReadItems(strings.NewReader(`{"url": "x", "warc_filename": "y", "offset": [1], "length": 1}`), FormatJSONL, resolver)
	assert.True(t, errors.Is(err, ErrInput))

	_, err = ReadItems(strings.NewReader(`{"url": `), FormatJSONL, resolver)
	assert.True(t, errors.Is(err, ErrInput))
}

func TestDetectFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"results.csv":       FormatCSV,
		"results.CSV.gz":    FormatCSV,
		"s3://b/rows.jsonl": FormatJSONL,
		"rows.ndjson.gz":    FormatJSONL,
	} {
		got, err := DetectFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := DetectFormat("results.parquet")
	assert.True(t, errors.Is(err, ErrInput))
}

func TestLoad_GzippedFromStore(t *testing.T) {
	csv := "url,warc_filename,offset,length\nhttps://a.example.com/," + warcPath + ",1,2\n"
	store := testutil.NewMemStore()
	store.Add("s3://bucket/results.csv.gz", testutil.Gzip([]byte(csv)))

	items, err := Load(context.Background(), store, "s3://bucket/results.csv.gz", FormatAuto, resolver)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Length)
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"url":"u","warc_filename":"w","offset":0,"length":1}`+"\n"), 0644))

	items, err := Load(context.Background(), storage.NewFileStore(), path, FormatAuto, resolver)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s3://commoncrawl/w", items[0].SourceURL)

	_, err = Load(context.Background(), storage.NewFileStore(), filepath.Join(t.TempDir(), "missing.csv"), FormatAuto, resolver)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
