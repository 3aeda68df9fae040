package extract

import (
	"context"

	"github.com/cockroachdb/errors"
)

// groupState는 FileGroup 하나의 처리 상태입니다.
//
//	Pending → RangeAttempting → AllRangeOk → Done
//	                          ↘ NeedsFallback → FallbackRunning → Done | Failed
//	Pending → FallbackRunning (range 읽기 비활성화)
type groupState int

const (
	statePending groupState = iota
	stateRangeAttempting
	stateAllRangeOk
	stateNeedsFallback
	stateFallbackRunning
	stateDone
	stateFailed
)

func (s groupState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateRangeAttempting:
		return "range_attempting"
	case stateAllRangeOk:
		return "all_range_ok"
	case stateNeedsFallback:
		return "needs_fallback"
	case stateFallbackRunning:
		return "fallback_running"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// session은 한 워커가 FileGroup 하나를 처리하는 동안의 상태입니다.
// fields[i]와 errs[i]는 group.Items[i]에 대응하고, 종료 시 둘 중 정확히 하나가 채워집니다.
type session struct {
	group FileGroup
	uri   string
	state groupState

	fields []map[string]any
	errs   []error

	// 이 위치부터 fallback 스트림으로 처리
	fallbackFrom int

	rangeReads  int
	rangeHits   int
	streamOpens int
	fellBack    bool
	skipped     bool

	// 그룹 단위 실패 원인
	err error
}

func newSession(g FileGroup) *session {
	uri := g.SourceURL
	if uri == "" {
		uri = g.WarcFilename
	}
	return &session{
		group:  g,
		uri:    uri,
		state:  statePending,
		fields: make([]map[string]any, len(g.Items)),
		errs:   make([]error, len(g.Items)),
	}
}

func skippedSession(g FileGroup) *session {
	s := newSession(g)
	s.state = stateDone
	s.skipped = true
	return s
}

func canceledSession(g FileGroup, cause error) *session {
	s := newSession(g)
	s.fail(errors.Mark(errors.Wrapf(cause, "group %s not started", g.WarcFilename), ErrCanceled))
	return s
}

// fail은 그룹 전체를 실패로 만듭니다. 이미 검증된 레코드도 내보내지 않습니다.
func (s *session) fail(err error) {
	s.err = err
	s.state = stateFailed
	for i := range s.errs {
		s.fields[i] = nil
		s.errs[i] = err
	}
}

// failWrite는 Sink에 넘기지 못한 레코드를 실패로 돌립니다.
func (s *session) failWrite(err error) {
	s.fail(err)
}

func (s *session) failedCount() int {
	n := 0
	for _, err := range s.errs {
		if err != nil {
			n++
		}
	}
	return n
}

// records는 성공한 항목을 offset 순서로 반환합니다.
func (s *session) records() []ExtractedRecord {
	out := make([]ExtractedRecord, 0, len(s.fields))
	for i, f := range s.fields {
		if f == nil || s.errs[i] != nil {
			continue
		}
		out = append(out, newRecord(s.group.Items[i], f))
	}
	return out
}

// processGroup은 상태 기계를 종료 상태까지 진행합니다.
func (c *Coordinator) processGroup(ctx context.Context, workerID int, g FileGroup) *session {
	s := newSession(g)
	log := c.logger.With("worker", workerID, "file", g.WarcFilename)
	log.Debugw("[워커] 그룹 시작", "items", len(g.Items), "uri", s.uri)

	for {
		switch s.state {
		case statePending:
			if c.opts.UseRangeReads {
				s.state = stateRangeAttempting
			} else {
				s.fellBack = true
				s.state = stateFallbackRunning
			}
		case stateRangeAttempting:
			c.attemptRanges(ctx, s)
		case stateAllRangeOk:
			s.state = stateDone
		case stateNeedsFallback:
			s.fellBack = true
			s.state = stateFallbackRunning
		case stateFallbackRunning:
			c.runFallback(ctx, s)
		case stateDone, stateFailed:
			if s.state == stateFailed {
				log.Warnw("[워커] 그룹 실패", "state", s.state.String(), "error", s.err)
			} else {
				log.Debugw("[워커] 그룹 완료",
					"state", s.state.String(),
					"range_hits", s.rangeHits,
					"fallback", s.fellBack,
					"failed", s.failedCount())
			}
			return s
		}
	}
}

// attemptRanges는 offset 순서로 range 읽기를 하다가 처음 Invalid가 나오면 멈춥니다.
// 전송 오류는 그룹 전체를 실패시킵니다.
func (c *Coordinator) attemptRanges(ctx context.Context, s *session) {
	for i, item := range s.group.Items {
		if err := ctx.Err(); err != nil {
			s.fail(markTransport(err, "range read %s", s.uri))
			return
		}
		s.rangeReads++
		res, err := c.fetcher.Fetch(ctx, s.uri, item)
		if err != nil {
			s.fail(err)
			return
		}
		fields, err := c.validator.Validate(item, res)
		if err != nil {
			c.logger.Debugw("[워커] range 검증 실패, fallback",
				"file", s.group.WarcFilename,
				"offset", item.Offset,
				"reason", err.Error())
			s.fallbackFrom = i
			s.state = stateNeedsFallback
			return
		}
		s.fields[i] = fields
		s.rangeHits++
	}
	s.state = stateAllRangeOk
}

// runFallback은 아직 처리하지 못한 항목을 한 번의 스트림으로 찾습니다.
func (c *Coordinator) runFallback(ctx context.Context, s *session) {
	rest := s.group.Items[s.fallbackFrom:]
	s.streamOpens++
	results, err := c.streamer.Stream(ctx, s.uri, rest)
	if err != nil {
		s.fail(err)
		return
	}
	for j, res := range results {
		i := s.fallbackFrom + j
		fields, err := c.validator.Validate(rest[j], res)
		if err != nil {
			s.errs[i] = err
			continue
		}
		s.fields[i] = fields
	}
	s.state = stateDone
}
