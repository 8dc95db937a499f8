// Package traceidx implements the Trace Index: a lazy view over one or
// more execution trace files, answering "what address was executed
// immediately after source address A?" from the first trace A appears
// in.
package traceidx

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/asmidx"
	"github.com/rtsrlab/yelkovan-go/rv"
)

// NotTaken is the sentinel line index returned when no trace contains
// the queried source address. It is not an error; it propagates as a
// diagnostic value for the caller to report.
const NotTaken = -1

// ErrMalformedTraceLine is returned when the line following a matched
// source address lacks the expected fifth whitespace token.
var ErrMalformedTraceLine = errors.New("malformed trace line: missing fifth token")

// Index is the Trace Index. Each trace file is loaded into memory at
// most once, on first use.
type Index struct {
	paths  []string
	loaded map[string][]string
}

// New returns a Trace Index over the given trace file paths. Files are
// scanned in insertion order.
func New(paths []string) *Index {
	return &Index{
		paths:  paths,
		loaded: make(map[string][]string),
	}
}

// linesOf returns the cached line slice for path, loading it on first
// request.
func (idx *Index) linesOf(path string) ([]string, error) {
	if lines, ok := idx.loaded[path]; ok {
		return lines, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	idx.loaded[path] = lines
	return lines, nil
}

// NextAfter answers "given source address addr, what line index in asm
// was executed immediately after addr?":
//
//  1. Scan trace files in insertion order.
//  2. In each trace, find the first line containing addr as a
//     substring.
//  3. Read the very next trace line; its fifth whitespace token is of
//     the form "0x<hex>" (strip "0x", append ":", and look this up in
//     the Assembly Index).
//  4. Return the resulting line index, or NotTaken if no trace contains
//     addr.
func (idx *Index) NextAfter(addr rv.Addr, asm *asmidx.Index) (int, error) {
	needle := addr.String()
	for _, path := range idx.paths {
		lines, err := idx.linesOf(path)
		if err != nil {
			return 0, errors.WithStack(err)
		}
		for i, line := range lines {
			if !strings.Contains(line, needle) {
				continue
			}
			if i+1 >= len(lines) {
				return 0, errors.WithStack(ErrMalformedTraceLine)
			}
			next := rv.Tokens(lines[i+1])
			if len(next) < 5 {
				return 0, errors.WithStack(ErrMalformedTraceLine)
			}
			targetHex := strings.TrimPrefix(next[4], "0x")
			targetLine, err := asm.LineOfAddressString(targetHex + ":")
			if err != nil {
				return 0, errors.WithStack(err)
			}
			return targetLine, nil
		}
	}
	return NotTaken, nil
}
