package extract

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Sink는 추출된 레코드를 받습니다. 여러 워커가 동시에 호출합니다.
type Sink interface {
	Commit(ctx context.Context, records []ExtractedRecord) error
}

// Checkpoint는 이전 실행에서 끝난 파일을 기억합니다.
type Checkpoint interface {
	Completed(warcFilename string) bool
	Mark(warcFilename string) error
}

// Options는 Coordinator 동작 설정입니다.
type Options struct {
	UseRangeReads bool
	MaxWorkers    int
}

// Coordinator는 FileGroup을 고정 크기 워커 풀에 나눠 처리합니다.
// 그룹 하나는 한 워커에서 끝까지 순차로 처리되므로 파일당 전체 스트림은 최대 한 번입니다.
type Coordinator struct {
	opts       Options
	fetcher    *RangeFetcher
	validator  *Validator
	streamer   *FallbackStreamer
	sink       Sink
	checkpoint Checkpoint
	logger     *zap.SugaredLogger
}

func NewCoordinator(opts Options, fetcher *RangeFetcher, validator *Validator, streamer *FallbackStreamer, sink Sink, logger *zap.SugaredLogger) *Coordinator {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Coordinator{
		opts:      opts,
		fetcher:   fetcher,
		validator: validator,
		streamer:  streamer,
		sink:      sink,
		logger:    logger,
	}
}

// WithCheckpoint는 완료 로그를 사용하도록 설정합니다.
func (c *Coordinator) WithCheckpoint(cp Checkpoint) *Coordinator {
	c.checkpoint = cp
	return c
}

// Run은 모든 WorkItem을 처리하고 실행 요약을 반환합니다.
// 출력 실패(ErrWrite)가 나면 남은 그룹을 취소하고 그 오류를 반환합니다.
// ctx가 취소되어도 모든 WorkItem은 성공 또는 실패 중 하나로 요약에 남습니다.
func (c *Coordinator) Run(ctx context.Context, items []WorkItem) (*Summary, error) {
	start := time.Now()
	groups, duplicates := GroupItems(items)
	summary := newSummary(len(items), len(groups), duplicates)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskChan := make(chan FileGroup)
	outcomes := make(chan *session, c.opts.MaxWorkers)

	var wg sync.WaitGroup

	// 그룹 공급. 취소되면 남은 그룹은 실행하지 않고 실패로 보고
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(taskChan)
		for i, g := range groups {
			if c.checkpoint != nil && c.checkpoint.Completed(g.WarcFilename) {
				outcomes <- skippedSession(g)
				continue
			}
			select {
			case taskChan <- g:
			case <-runCtx.Done():
				for _, rest := range groups[i:] {
					if c.checkpoint != nil && c.checkpoint.Completed(rest.WarcFilename) {
						outcomes <- skippedSession(rest)
						continue
					}
					outcomes <- canceledSession(rest, runCtx.Err())
				}
				return
			}
		}
	}()

	for i := 0; i < c.opts.MaxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for g := range taskChan {
				s := c.processGroup(runCtx, workerID, g)
				c.commit(runCtx, s)
				if errors.Is(s.err, ErrWrite) {
					cancel()
				}
				outcomes <- s
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var fatal error
	for s := range outcomes {
		summary.add(s)
		if fatal == nil && errors.Is(s.err, ErrWrite) {
			fatal = s.err
		}
	}
	summary.Elapsed = time.Since(start)

	c.logger.Infow("[완료] 추출 종료",
		"files", summary.Files,
		"files_failed", summary.FilesFailed,
		"items", summary.Items,
		"emitted", summary.Emitted,
		"failed", summary.Failed,
		"range_hits", summary.RangeHits,
		"fallbacks", summary.Fallbacks,
		"elapsed", summary.Elapsed)
	return summary, fatal
}

// commit은 Done 상태 그룹의 레코드를 offset 순서대로 Sink에 넘깁니다.
func (c *Coordinator) commit(ctx context.Context, s *session) {
	if s.state != stateDone {
		return
	}
	records := s.records()
	if len(records) > 0 {
		if err := c.sink.Commit(ctx, records); err != nil {
			s.failWrite(errors.Mark(errors.Wrapf(err, "commit %s", s.group.WarcFilename), ErrWrite))
			c.logger.Errorw("[출력] 쓰기 실패", "file", s.group.WarcFilename, "error", err)
			return
		}
	}
	if c.checkpoint != nil && s.failedCount() == 0 {
		if err := c.checkpoint.Mark(s.group.WarcFilename); err != nil {
			c.logger.Warnw("[출력] 완료 로그 기록 실패", "file", s.group.WarcFilename, "error", err)
		}
	}
}
