package commoncrawl

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// NormalizeWatURL은 WARC 경로를 같은 세그먼트의 WAT 경로로 바꿉니다.
// 이미 WAT 경로면 그대로 둡니다.
func NormalizeWatURL(candidate string) string {
	if candidate == "" || strings.Contains(candidate, ".warc.wat.gz") {
		return candidate
	}
	out := strings.Replace(candidate, "/warc/", "/wat/", 1)
	out = strings.Replace(out, ".warc.gz", ".warc.wat.gz", 1)
	return out
}

// ResolveObjectURL은 cc-index의 상대 경로(crawl-data/...)를 baseURL 기준 절대 URL로 만듭니다.
func ResolveObjectURL(baseURL, name string) string {
	if name == "" || strings.Contains(name, "://") || strings.HasPrefix(name, "/") {
		return name
	}
	if baseURL == "" {
		return name
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(name, "/")
}

// SplitS3URL은 s3://bucket/key를 bucket과 key로 나눕니다.
func SplitS3URL(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.Newf("not an s3 url: %q", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Newf("s3 url without bucket: %q", uri)
	}
	return bucket, key, nil
}

// JoinObjectURL은 접두 URL 또는 디렉터리에 파일 이름을 붙입니다.
func JoinObjectURL(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimRight(prefix, "/") + "/" + name
}
