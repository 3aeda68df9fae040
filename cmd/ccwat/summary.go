package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/tiwari1302/commoncrawl/internal/extract"
	"github.com/tiwari1302/commoncrawl/internal/logger"
)

// 실패 목록은 앞부분만 보여줌
const maxListedFailures = 20

func printSummary(s *extract.Summary, chunks []string) {
	if logger.JSONOutput {
		out := struct {
			*extract.Summary
			FailuresByKind map[string]int `json:"failures_by_kind"`
			Chunks         []string       `json:"chunks"`
		}{s, s.FailuresByKind(), chunks}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	pterm.Println()
	pterm.DefaultSection.Println("Run summary " + s.RunID)

	rows := pterm.TableData{
		{"metric", "value"},
		{"files", strconv.Itoa(s.Files)},
		{"files done", strconv.Itoa(s.FilesDone)},
		{"files failed", strconv.Itoa(s.FilesFailed)},
		{"files skipped", strconv.Itoa(s.FilesSkipped)},
		{"items", strconv.Itoa(s.Items)},
		{"emitted", strconv.Itoa(s.Emitted)},
		{"failed", strconv.Itoa(s.Failed)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"duplicates", strconv.Itoa(s.Duplicates)},
		{"range reads", strconv.Itoa(s.RangeReads)},
		{"range hits", strconv.Itoa(s.RangeHits)},
		{"fallback passes", strconv.Itoa(s.Fallbacks)},
		{"stream opens", strconv.Itoa(s.StreamOpens)},
		{"elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	for _, c := range chunks {
		pterm.Info.Printfln("output %s", c)
	}

	if s.Failed == 0 {
		pterm.Success.Printfln("all %d items extracted", s.Emitted)
		return
	}

	byKind := s.FailuresByKind()
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		pterm.Warning.Printfln("%d items failed: %s", byKind[k], k)
	}

	failures := append([]extract.Failure(nil), s.Failures...)
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Item.WarcFilename != failures[j].Item.WarcFilename {
			return failures[i].Item.WarcFilename < failures[j].Item.WarcFilename
		}
		return failures[i].Item.Offset < failures[j].Item.Offset
	})
	for i, f := range failures {
		if i == maxListedFailures {
			pterm.Printfln("  ... %d more", len(failures)-maxListedFailures)
			break
		}
		pterm.Printfln("  %s@%d %s: %v", f.Item.WarcFilename, f.Item.Offset, f.Kind, f.Err)
	}
	fmt.Println()
}
