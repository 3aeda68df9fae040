package commoncrawl

import (
	"bufio"
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
)

// Common Crawl의 WARC/WAT 파일은 레코드마다 gzip 멤버 하나로 압축되어 있습니다.
// cc-index의 offset/length는 이 압축 멤버의 위치를 가리킵니다.

var (
	ErrTrailingData = errors.New("trailing bytes after gzip member")
	ErrEmptyMember  = errors.New("empty gzip member")
)

// Member는 스트림 안의 gzip 멤버 하나입니다. Offset과 Length는 압축된 바이트 기준입니다.
type Member struct {
	Offset int64
	Length int64
	Data   []byte
}

// countingReader는 소비한 압축 바이트 수를 셉니다.
// io.ByteReader를 구현하므로 flate가 멤버 끝을 넘어 미리 읽지 않습니다.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// MemberScanner는 다중 멤버 gzip 스트림을 멤버 단위로 한 번만 순회합니다.
type MemberScanner struct {
	cr      *countingReader
	zr      *gzip.Reader
	started bool
	err     error
}

func NewMemberScanner(r io.Reader) *MemberScanner {
	return &MemberScanner{cr: &countingReader{r: bufio.NewReaderSize(r, 64*1024)}}
}

// Offset은 지금까지 소비한 압축 바이트 수입니다.
func (s *MemberScanner) Offset() int64 { return s.cr.n }

// Next는 다음 멤버를 압축 해제해 반환합니다. 스트림 끝이면 io.EOF입니다.
func (s *MemberScanner) Next() (*Member, error) {
	if s.err != nil {
		return nil, s.err
	}

	off := s.cr.n
	var err error
	if !s.started {
		s.zr, err = gzip.NewReader(s.cr)
		s.started = true
	} else {
		err = s.zr.Reset(s.cr)
	}
	if err != nil {
		if err == io.EOF && s.cr.n == off {
			s.err = io.EOF
			return nil, io.EOF
		}
		s.err = errors.Wrapf(err, "gzip header at offset %d", off)
		return nil, s.err
	}
	s.zr.Multistream(false)

	data, err := io.ReadAll(s.zr)
	if err != nil {
		s.err = errors.Wrapf(err, "gzip member at offset %d", off)
		return nil, s.err
	}
	return &Member{Offset: off, Length: s.cr.n - off, Data: data}, nil
}

// IsGzip는 gzip 매직 바이트로 시작하는지 확인합니다.
func IsGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// DecodeMember는 b가 정확히 gzip 멤버 하나일 때만 압축 해제합니다.
// 잘린 멤버, 헤더 오류, 멤버 뒤에 남는 바이트는 모두 오류입니다.
// gzip이 아닌 바이트는 비압축 레코드로 보고 그대로 돌려줍니다.
func DecodeMember(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrEmptyMember
	}
	if !IsGzip(b) {
		return b, nil
	}

	br := bytes.NewReader(b)
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, errors.Wrap(err, "gzip header")
	}
	defer zr.Close()
	zr.Multistream(false)

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "gzip body")
	}
	if br.Len() != 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes", br.Len())
	}
	if len(data) == 0 {
		return nil, ErrEmptyMember
	}
	return data, nil
}
