package cfgbuild

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/traceidx"
)

// Stage is a snapshot of the boundary collections at one point in
// reconciliation, taken both before and after fall-through inference so
// callers can print both as diagnostics.
type Stage struct {
	Starts []int
	Ends   []EndRecord
}

// Reconcile turns a collector's raw output into a pair of balanced
// boundary lists:
//
//  1. Dedup and sort starts.
//  2. Sort ends by end_line, discarding duplicate end_lines in favor of
//     the longer successor list.
//  3. Infer fall-through successors for zero-successor end records whose
//     end_line is not endOfMain.
//
// It returns the snapshot taken after steps 1-2 (pre) and the final
// snapshot after step 3 (post). post is also returned alongside
// ErrBoundaryMismatch when the post-condition len(starts) == len(ends)
// fails to hold, so the caller may still print it before aborting.
func Reconcile(c *Collector, endOfMain int) (pre, post *Stage, err error) {
	starts := dedupSortedStarts(c.starts)
	ends := dedupEnds(c.ends)

	pre = &Stage{
		Starts: append([]int(nil), starts...),
		Ends:   cloneEnds(ends),
	}

	inferFallThrough(ends, endOfMain)

	post = &Stage{
		Starts: starts,
		Ends:   ends,
	}

	if len(starts) != len(ends) {
		return pre, post, errors.WithStack(ErrBoundaryMismatch)
	}
	return pre, post, nil
}

// dedupSortedStarts returns the sorted, duplicate-free contents of a
// starts set.
func dedupSortedStarts(starts map[int]bool) []int {
	out := make([]int, 0, len(starts))
	for line := range starts {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}

// dedupEnds sorts raw end records by end_line and merges records that
// share an end_line, keeping the one with the longer successor list.
// Ties (equal length) keep the first encountered in the stable sort
// order; tied records are identical in practice so this is not
// observable.
func dedupEnds(raw []EndRecord) []EndRecord {
	sorted := append([]EndRecord(nil), raw...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EndLine < sorted[j].EndLine
	})

	var out []EndRecord
	i := 0
	for i < len(sorted) {
		best := sorted[i]
		j := i + 1
		for j < len(sorted) && sorted[j].EndLine == best.EndLine {
			if len(sorted[j].Successors) > len(best.Successors) {
				best = sorted[j]
			}
			j++
		}
		out = append(out, best)
		i = j
	}
	return out
}

// inferFallThrough replaces the successor list of every zero-successor
// end record (other than endOfMain) with a single fall-through
// successor at end_line + 1.
func inferFallThrough(ends []EndRecord, endOfMain int) {
	for i := range ends {
		if len(ends[i].Successors) == 0 && ends[i].EndLine != endOfMain {
			ends[i].Successors = []int{ends[i].EndLine + 1}
		}
	}
}

func cloneEnds(ends []EndRecord) []EndRecord {
	out := make([]EndRecord, len(ends))
	for i, e := range ends {
		out[i] = EndRecord{
			EndLine:    e.EndLine,
			Successors: append([]int(nil), e.Successors...),
		}
	}
	return out
}

// isNotTaken reports whether successor is the Trace Index's NotTaken
// sentinel.
func isNotTaken(successor int) bool {
	return successor == traceidx.NotTaken
}
