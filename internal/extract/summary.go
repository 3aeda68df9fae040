package extract

import "time"

// Summary는 실행 한 번의 집계입니다.
// Items = Emitted + Failed + Skipped + Duplicates 가 항상 성립합니다.
type Summary struct {
	RunID string `json:"run_id"`

	Files        int `json:"files"`
	FilesDone    int `json:"files_done"`
	FilesFailed  int `json:"files_failed"`
	FilesSkipped int `json:"files_skipped"`

	Items      int `json:"items"`
	Emitted    int `json:"emitted"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`

	RangeReads  int `json:"range_reads"`
	RangeHits   int `json:"range_hits"`
	Fallbacks   int `json:"fallbacks"`
	StreamOpens int `json:"stream_opens"`

	Failures []Failure    `json:"-"`
	Elapsed  time.Duration `json:"elapsed"`
}

func newSummary(items, files, duplicates int) *Summary {
	return &Summary{Items: items, Files: files, Duplicates: duplicates}
}

func (s *Summary) add(sess *session) {
	if sess.skipped {
		s.FilesSkipped++
		s.Skipped += len(sess.group.Items)
		return
	}
	if sess.state == stateFailed {
		s.FilesFailed++
	} else {
		s.FilesDone++
	}
	s.RangeReads += sess.rangeReads
	s.RangeHits += sess.rangeHits
	s.StreamOpens += sess.streamOpens
	if sess.fellBack {
		s.Fallbacks++
	}
	for i, item := range sess.group.Items {
		if err := sess.errs[i]; err != nil {
			s.Failed++
			s.Failures = append(s.Failures, Failure{Item: item, Kind: Kind(err), Err: err})
			continue
		}
		if sess.fields[i] != nil {
			s.Emitted++
		}
	}
}

// HasFailures는 실패한 WorkItem이 하나라도 있으면 true입니다.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// FailuresByKind는 실패를 종류별로 셉니다.
func (s *Summary) FailuresByKind() map[string]int {
	out := make(map[string]int)
	for _, f := range s.Failures {
		out[f.Kind]++
	}
	return out
}
