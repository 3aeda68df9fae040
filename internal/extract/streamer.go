package extract

import (
	"context"
	"io"
	"path"

	"go.uber.org/zap"

	"github.com/tiwari1302/commoncrawl/pkg/commoncrawl"
)

// FallbackStreamer는 파일 전체를 한 번만 순차로 읽으며 요청된 레코드를 모두 찾습니다.
//
// 레코드와 WorkItem은 다음 순서로 맞춥니다.
//  1. 스트림 안 gzip 멤버의 압축 offset (Container나 WARC-Target-URI가 항목과 어긋나면 후보로만 남김)
//  2. WAT 레코드의 Container.Offset (cc-index offset은 WARC 파일 기준이고 WAT에 그대로 남아 있음)
//  3. matchTargetURI가 켜져 있으면 WARC-Target-URI
type FallbackStreamer struct {
	src            Source
	matchTargetURI bool
	logger         *zap.SugaredLogger
}

func NewFallbackStreamer(src Source, matchTargetURI bool, logger *zap.SugaredLogger) *FallbackStreamer {
	return &FallbackStreamer{src: src, matchTargetURI: matchTargetURI, logger: logger}
}

// pendingSet은 한 번의 스트림 동안 아직 못 찾은 WorkItem을 추적합니다.
// tentative는 offset만 맞고 내용으로 확인하지 못한 후보입니다. 더 나은 매칭이 없을 때만 쓰입니다.
type pendingSet struct {
	items     []WorkItem
	resolved  []bool
	remaining int
	byOffset  map[int64]int
	byURI     map[string][]int
	tentative map[int][]byte
}

func newPendingSet(items []WorkItem) *pendingSet {
	p := &pendingSet{
		items:     items,
		resolved:  make([]bool, len(items)),
		remaining: len(items),
		byOffset:  make(map[int64]int, len(items)),
		byURI:     make(map[string][]int),
		tentative: make(map[int][]byte),
	}
	for i, item := range items {
		if _, dup := p.byOffset[item.Offset]; !dup {
			p.byOffset[item.Offset] = i
		}
		if item.URL != "" {
			p.byURI[item.URL] = append(p.byURI[item.URL], i)
		}
	}
	return p
}

func (p *pendingSet) take(i int) int {
	p.resolved[i] = true
	p.remaining--
	delete(p.tentative, i)
	return i
}

func (p *pendingSet) unresolved(off int64) (int, bool) {
	i, ok := p.byOffset[off]
	if !ok || p.resolved[i] {
		return 0, false
	}
	return i, true
}

func (p *pendingSet) containerMatches(i int, ref commoncrawl.ContainerRef) bool {
	if ref.Offset != p.items[i].Offset {
		return false
	}
	return ref.Filename == "" || path.Base(p.items[i].WarcFilename) == ref.Filename
}

func (p *pendingSet) matchContainer(ref commoncrawl.ContainerRef) (int, bool) {
	i, ok := p.unresolved(ref.Offset)
	if !ok || !p.containerMatches(i, ref) {
		return 0, false
	}
	return p.take(i), true
}

func (p *pendingSet) matchURI(uri string) (int, bool) {
	for _, i := range p.byURI[uri] {
		if !p.resolved[i] {
			return p.take(i), true
		}
	}
	return 0, false
}

type offsetVerdict int

const (
	offsetRejected offsetVerdict = iota
	offsetTentative
	offsetConfirmed
)

// judgeOffset은 stream offset이 item.Offset과 같은 멤버가 정말 그 항목의 레코드인지 판단합니다.
// cc-index의 offset은 WARC 기준이라 WAT 멤버 offset과 우연히 겹칠 수 있습니다.
func (p *pendingSet) judgeOffset(i int, rec *commoncrawl.Record, ref commoncrawl.ContainerRef) offsetVerdict {
	item := p.items[i]
	if rec == nil {
		// 해석 불가. 더 나은 후보가 없으면 Validator가 Invalid로 판정
		return offsetTentative
	}
	if ref.OK && p.containerMatches(i, ref) {
		return offsetConfirmed
	}
	if item.URL != "" && rec.TargetURI() != "" {
		if rec.TargetURI() == item.URL {
			return offsetConfirmed
		}
		return offsetRejected
	}
	if ref.OK {
		// 다른 WARC 레코드를 가리키는 WAT 멤버
		return offsetTentative
	}
	return offsetConfirmed
}

// match는 멤버 하나를 아직 못 찾은 항목에 배정합니다.
func (s *FallbackStreamer) match(p *pendingSet, m *commoncrawl.Member) (int, bool) {
	rec, err := commoncrawl.ParseRecord(m.Data)
	if err != nil {
		rec = nil
	}
	var ref commoncrawl.ContainerRef
	if rec != nil && commoncrawl.IsWAT(rec) {
		ref = commoncrawl.WATContainer(rec.Block)
	}

	verdict := offsetRejected
	i, atOffset := p.unresolved(m.Offset)
	if atOffset {
		verdict = p.judgeOffset(i, rec, ref)
		if verdict == offsetConfirmed {
			return p.take(i), true
		}
	}
	if ref.OK {
		if idx, ok := p.matchContainer(ref); ok {
			return idx, true
		}
	}
	if s.matchTargetURI && rec != nil && rec.TargetURI() != "" {
		if idx, ok := p.matchURI(rec.TargetURI()); ok {
			return idx, true
		}
	}
	if atOffset && verdict == offsetTentative {
		if _, seen := p.tentative[i]; !seen {
			p.tentative[i] = m.Data
		}
	}
	return 0, false
}

// Stream은 uri를 한 번 열어 끝까지(또는 모두 찾을 때까지) 읽습니다.
// 반환 슬라이스는 items와 같은 순서이며 각 항목은 StreamOk 또는 StreamMiss입니다.
// 객체를 열 수 없으면 ErrTransport 오류를 반환합니다.
func (s *FallbackStreamer) Stream(ctx context.Context, uri string, items []WorkItem) ([]FetchResult, error) {
	results := make([]FetchResult, len(items))
	if len(items) == 0 {
		return results, nil
	}

	body, err := s.src.Open(ctx, uri)
	if err != nil {
		return nil, markTransport(err, "open stream %s", uri)
	}
	defer body.Close()

	pending := newPendingSet(items)
	scanner := commoncrawl.NewMemberScanner(body)
	members := 0
	var streamErr error

	for pending.remaining > 0 {
		if err := ctx.Err(); err != nil {
			streamErr = markTransport(err, "stream %s", uri)
			break
		}
		m, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = markTransport(err, "stream %s", uri)
			break
		}
		members++

		if idx, ok := s.match(pending, m); ok {
			results[idx] = FetchResult{Kind: StreamOk, Data: m.Data}
		}
	}

	for i := range items {
		if pending.resolved[i] {
			continue
		}
		// 끝까지 읽었는데 확정 매칭이 없으면 offset 후보를 씀
		if data, ok := pending.tentative[i]; ok && streamErr == nil {
			results[pending.take(i)] = FetchResult{Kind: StreamOk, Data: data}
			continue
		}
		if streamErr != nil {
			results[i] = FetchResult{Kind: StreamMiss, Reason: "stream aborted", Err: streamErr}
		} else {
			results[i] = FetchResult{Kind: StreamMiss, Reason: "not found after full pass of " + uri}
		}
	}

	s.logger.Debugw("[스트림] 완료",
		"file", uri,
		"members", members,
		"requested", len(items),
		"missing", pending.remaining,
		"all_found", pending.remaining == 0)
	return results, nil
}
