// Package asmidx implements the Assembly Index: an in-memory,
// read-only-after-load representation of a RISC-V disassembly listing.
package asmidx

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/rv"
)

// ErrMainNotFound is returned when no "<main>:" symbol line exists in the
// assembly.
var ErrMainNotFound = errors.New("main function not found in assembly")

// ErrAddressNotFound is returned when a lookup address has no matching
// line in the assembly.
var ErrAddressNotFound = errors.New("address not found in assembly")

// ErrSymbolNotFound is returned when a lookup symbol has no matching
// line in the assembly.
var ErrSymbolNotFound = errors.New("symbol not found in assembly")

// Index is the Assembly Index: a sequence of lines plus an
// address→line-index map and a symbol→line-index map. It loads once and
// is read-only thereafter.
type Index struct {
	lines    []string
	addrLine map[rv.Addr]int
	symLine  map[string]int
}

// Load reads the disassembly file at path and builds the Assembly
// Index.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	idx := &Index{
		addrLine: make(map[rv.Addr]int),
		symLine:  make(map[string]int),
	}
	scanner := bufio.NewScanner(f)
	// Disassembly lines can be long (wide operand lists); grow the
	// scanner buffer past bufio's 64KiB default, which would otherwise
	// make Scan stop with bufio.ErrTooLong.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		i := len(idx.lines)
		idx.lines = append(idx.lines, line)

		tokens := rv.Tokens(line)
		if len(tokens) == 0 {
			continue
		}
		if strings.HasSuffix(tokens[0], ":") {
			if addr, err := rv.ParseAddr(tokens[0]); err == nil {
				idx.addrLine[addr] = i
			}
		}
		for _, tok := range tokens {
			if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">:") {
				name := strings.TrimSuffix(strings.TrimPrefix(tok, "<"), ">:")
				idx.symLine[name] = i
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return idx, nil
}

// NumLines returns the number of lines in the assembly.
func (idx *Index) NumLines() int {
	return len(idx.lines)
}

// Line returns the text of line i.
func (idx *Index) Line(i int) string {
	return idx.lines[i]
}

// Tokens returns the whitespace-split tokens of line i.
func (idx *Index) Tokens(i int) []string {
	return rv.Tokens(idx.lines[i])
}

// IsValidInstruction reports whether line i yields a valid instruction
// (at least 3 whitespace-separated tokens).
func (idx *Index) IsValidInstruction(i int) bool {
	if i < 0 || i >= len(idx.lines) {
		return false
	}
	return rv.IsValidInstruction(idx.Tokens(i))
}

// IsBlank reports whether line i is blank, the function-terminator
// marker in the disassembly dump.
func (idx *Index) IsBlank(i int) bool {
	return i >= len(idx.lines) || strings.TrimSpace(idx.lines[i]) == ""
}

// LineOfAddress returns the line index whose leading token equals
// "<addr>:".
func (idx *Index) LineOfAddress(addr rv.Addr) (int, error) {
	i, ok := idx.addrLine[addr]
	if !ok {
		return 0, errors.WithStack(ErrAddressNotFound)
	}
	return i, nil
}

// LineOfAddressString parses s (a hex address, with or without a
// trailing colon) and looks it up.
func (idx *Index) LineOfAddressString(s string) (int, error) {
	addr, err := rv.ParseAddr(s)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return idx.LineOfAddress(addr)
}

// LineOfSymbol returns the line index of the "<name>:" symbol marker.
func (idx *Index) LineOfSymbol(name string) (int, error) {
	i, ok := idx.symLine[name]
	if !ok {
		return 0, errors.WithStack(ErrSymbolNotFound)
	}
	return i, nil
}

// EntryOfSymbol returns the entry line of the named function: one past
// its "<name>:" symbol marker.
func (idx *Index) EntryOfSymbol(name string) (int, error) {
	sym, err := idx.LineOfSymbol(name)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return sym + 1, nil
}

// MainEntry returns the entry line of main, or ErrMainNotFound.
func (idx *Index) MainEntry() (int, error) {
	entry, err := idx.EntryOfSymbol("main")
	if err != nil {
		return 0, errors.WithStack(ErrMainNotFound)
	}
	return entry, nil
}

// IsEntryOf reports whether line i is the entry of the named function,
// i.e. whether the line before it is that function's symbol marker.
// Used by the scanner to recognize main's own ret.
func (idx *Index) IsEntryOf(i int, name string) bool {
	if i <= 0 {
		return false
	}
	return strings.Contains(idx.lines[i-1], "<"+name+">:")
}
