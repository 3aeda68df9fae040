package commoncrawl

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNoContentLength = errors.New("missing or invalid Content-Length")
	ErrShortBlock      = errors.New("record block shorter than Content-Length")
	ErrNotWARC         = errors.New("not a WARC record")
)

// Header는 WARC 헤더 필드입니다.
type Header map[string]string

// Record는 WARC 레코드 하나입니다.
type Record struct {
	Version string
	Header  Header
	Block   []byte
}

func (r *Record) Type() string      { return r.Header["WARC-Type"] }
func (r *Record) TargetURI() string { return r.Header["WARC-Target-URI"] }
func (r *Record) Date() string      { return r.Header["WARC-Date"] }

func (r *Record) ContentType() string {
	return strings.ToLower(strings.TrimSpace(r.Header["Content-Type"]))
}

// ParseHeader는 "키: 값" 줄들을 맵으로 바꿉니다. 콜론이 없는 줄은 무시합니다.
func ParseHeader(headerLines []string) Header {
	header := make(Header)
	for _, line := range headerLines {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			header[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return header
}

// ReadRecord는 reader에서 WARC 레코드 하나를 읽습니다.
// 레코드 사이의 빈 줄은 건너뛰며, 레코드가 더 없으면 io.EOF를 반환합니다.
func ReadRecord(reader *bufio.Reader) (*Record, error) {
	return readRecord(reader, -1)
}

// readRecord는 maxBlock이 0 이상이면 Content-Length가 그보다 큰 레코드를 읽기 전에 거부합니다.
func readRecord(reader *bufio.Reader, maxBlock int64) (*Record, error) {
	var version string
	headerLines := []string{}
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && version == "" && strings.TrimSpace(line) == "" {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "read WARC header")
		}

		line = strings.TrimRight(line, "\r\n")
		if version == "" {
			if line == "" {
				continue
			}
			if !strings.HasPrefix(line, "WARC/") {
				return nil, errors.Wrapf(ErrNotWARC, "first line %q", truncate(line, 40))
			}
			version = line
			continue
		}
		if line == "" {
			break
		}
		headerLines = append(headerLines, line)
	}

	header := ParseHeader(headerLines)
	contentLength, err := strconv.ParseInt(header["Content-Length"], 10, 64)
	if err != nil || contentLength < 0 {
		return nil, ErrNoContentLength
	}

	if maxBlock >= 0 && contentLength > maxBlock {
		return nil, errors.Wrapf(ErrShortBlock, "Content-Length %d exceeds %d available bytes", contentLength, maxBlock)
	}

	// 헤더 값만 믿고 미리 할당하지 않음. 실제로 읽힌 만큼만 버퍼가 자람
	var block bytes.Buffer
	if n, err := io.CopyN(&block, reader, contentLength); err != nil {
		return nil, errors.Wrapf(ErrShortBlock, "want %d bytes, got %d: %v", contentLength, n, err)
	}

	return &Record{Version: version, Header: header, Block: block.Bytes()}, nil
}

// ParseRecord는 raw가 정확히 레코드 하나인지 확인하며 읽습니다.
// 블록 뒤에는 CR/LF 외의 바이트가 올 수 없습니다.
func ParseRecord(raw []byte) (*Record, error) {
	reader := bufio.NewReader(bytes.NewReader(raw))
	rec, err := readRecord(reader, int64(len(raw)))
	if err == io.EOF {
		return nil, errors.Wrap(ErrNotWARC, "empty input")
	}
	if err != nil {
		return nil, err
	}

	rest, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(bytes.Trim(rest, "\r\n")) != 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes after record block", len(rest))
	}
	return rec, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
