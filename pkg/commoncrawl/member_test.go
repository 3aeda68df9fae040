package commoncrawl

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberScanner(t *testing.T) {
	payloads := [][]byte{
		rawRecord("warcinfo", "", "application/warc-fields", "software: test\r\n"),
		rawRecord("response", "https://a.example.com/", "application/http; msgtype=response", "HTTP/1.1 200 OK\r\n\r\nA"),
		rawRecord("response", "https://b.example.com/", "application/http; msgtype=response", "HTTP/1.1 404 Not Found\r\n\r\nB"),
	}
	var file bytes.Buffer
	var offsets, lengths []int64
	for _, p := range payloads {
		m := gzipBytes(p)
		offsets = append(offsets, int64(file.Len()))
		lengths = append(lengths, int64(len(m)))
		file.Write(m)
	}

	s := NewMemberScanner(bytes.NewReader(file.Bytes()))
	for i := range payloads {
		m, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, offsets[i], m.Offset)
		assert.Equal(t, lengths[i], m.Length)
		assert.Equal(t, payloads[i], m.Data)

		// 스캐너가 보고한 위치로 잘라낸 바이트는 그대로 하나의 멤버
		raw := file.Bytes()[m.Offset : m.Offset+m.Length]
		decoded, err := DecodeMember(raw)
		require.NoError(t, err)
		assert.Equal(t, payloads[i], decoded)
	}
	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int64(file.Len()), s.Offset())
}

func TestMemberScanner_Corrupt(t *testing.T) {
	good := gzipBytes([]byte("hello"))
	data := append(append([]byte{}, good...), []byte("not gzip")...)

	s := NewMemberScanner(bytes.NewReader(data))
	m, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), m.Data)

	_, err = s.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestDecodeMember(t *testing.T) {
	member := gzipBytes([]byte("record"))

	got, err := DecodeMember(member)
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), got)

	_, err = DecodeMember(append(append([]byte{}, member...), member...))
	assert.True(t, errors.Is(err, ErrTrailingData))

	_, err = DecodeMember(member[:len(member)-3])
	assert.Error(t, err)

	_, err = DecodeMember(nil)
	assert.True(t, errors.Is(err, ErrEmptyMember))

	plain, err := DecodeMember([]byte("WARC/1.0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte("WARC/1.0\r\n"), plain)
}
