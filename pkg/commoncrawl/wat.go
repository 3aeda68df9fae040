package commoncrawl

import (
	"encoding/json"
	"strconv"

	"github.com/cockroachdb/errors"
)

const responseContentType = "application/http; msgtype=response"

var ErrNotWAT = errors.New("not a WAT JSON record")

// WAT 레코드의 JSON 구조 중 추출에 필요한 부분만 정의합니다.
type watDocument struct {
	Container *watContainer `json:"Container"`
	Envelope  *watEnvelope  `json:"Envelope"`
}

type watContainer struct {
	Filename string      `json:"Filename"`
	Offset   json.Number `json:"Offset"`
}

type watEnvelope struct {
	WARCHeaderMeta  map[string]string `json:"WARC-Header-Metadata"`
	PayloadMetadata *watPayload       `json:"Payload-Metadata"`
}

type watPayload struct {
	ActualContentType string           `json:"Actual-Content-Type"`
	EntityDigest      string           `json:"Entity-Digest"`
	HTTPResponse      *watHTTPResponse `json:"HTTP-Response-Metadata"`
}

type watHTTPResponse struct {
	ResponseMessage struct {
		Status string `json:"Status"`
	} `json:"Response-Message"`
	EntityDigest string       `json:"Entity-Digest"`
	HTMLMetadata *watHTMLMeta `json:"HTML-Metadata"`
}

type watHTMLMeta struct {
	Head  json.RawMessage   `json:"Head"`
	Links []json.RawMessage `json:"Links"`
}

type watHead struct {
	Title string `json:"Title"`
}

// ContainerRef는 WAT 레코드가 가리키는 원본 WARC 레코드 위치입니다.
type ContainerRef struct {
	Filename string
	Offset   int64
	OK       bool
}

// ParseWAT는 HTTP 응답을 설명하는 WAT JSON 블록에서 필드를 추출합니다.
// request, warcinfo 등 응답이 아닌 레코드는 ErrUnsupportedRecord입니다.
func ParseWAT(block []byte) (map[string]any, error) {
	var doc watDocument
	if err := json.Unmarshal(block, &doc); err != nil {
		return nil, errors.Wrap(ErrNotWAT, err.Error())
	}
	if doc.Envelope == nil {
		return nil, errors.Wrap(ErrNotWAT, "missing Envelope")
	}

	env := doc.Envelope
	pm := env.PayloadMetadata
	if pm == nil || pm.ActualContentType != responseContentType {
		actual := ""
		if pm != nil {
			actual = pm.ActualContentType
		}
		return nil, errors.Wrapf(ErrUnsupportedRecord, "WAT payload %q", actual)
	}

	fields := map[string]any{
		"target_uri":   env.WARCHeaderMeta["WARC-Target-URI"],
		"warc_type":    env.WARCHeaderMeta["WARC-Type"],
		"warc_date":    env.WARCHeaderMeta["WARC-Date"],
		"content_type": pm.ActualContentType,
	}

	digest := pm.EntityDigest
	if hr := pm.HTTPResponse; hr != nil {
		if digest == "" {
			digest = hr.EntityDigest
		}
		if status, err := strconv.Atoi(hr.ResponseMessage.Status); err == nil {
			fields["http_status"] = status
		}
		if hm := hr.HTMLMetadata; hm != nil {
			fields["link_count"] = len(hm.Links)
			if len(hm.Head) > 0 && string(hm.Head) != "null" {
				var head map[string]any
				if err := json.Unmarshal(hm.Head, &head); err == nil {
					fields["head"] = head
				}
				var h watHead
				if err := json.Unmarshal(hm.Head, &h); err == nil && h.Title != "" {
					fields["title"] = h.Title
				}
			}
		}
	}
	if digest == "" {
		digest = env.WARCHeaderMeta["WARC-Payload-Digest"]
	}
	if digest != "" {
		fields["entity_digest"] = digest
	}

	if ref := containerRef(doc.Container); ref.OK {
		fields["container_filename"] = ref.Filename
		fields["container_offset"] = ref.Offset
	}
	return fields, nil
}

// WATContainer는 블록 전체를 해석하지 않고 Container 정보만 읽습니다.
func WATContainer(block []byte) ContainerRef {
	var doc struct {
		Container *watContainer `json:"Container"`
	}
	if err := json.Unmarshal(block, &doc); err != nil {
		return ContainerRef{}
	}
	return containerRef(doc.Container)
}

func containerRef(c *watContainer) ContainerRef {
	if c == nil || c.Offset == "" {
		return ContainerRef{}
	}
	off, err := c.Offset.Int64()
	if err != nil {
		return ContainerRef{}
	}
	return ContainerRef{Filename: c.Filename, Offset: off, OK: true}
}
