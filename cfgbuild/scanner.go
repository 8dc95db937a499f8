package cfgbuild

import (
	"log"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/asmidx"
	"github.com/rtsrlab/yelkovan-go/rv"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

// Scanner walks a single function's instructions linearly, classifying
// each as ordinary / conditional branch / unconditional jump / return,
// and feeding a Collector; it enqueues newly discovered callees on a
// Worklist.
type Scanner struct {
	asm   *asmidx.Index
	trace *traceidx.Index
	col   *Collector
	wl    *Worklist
	dbg   *log.Logger
	warn  *log.Logger

	// endOfMain is the line of main's own ret, the sole end record
	// legitimately left with zero successors after reconciliation. It
	// stays 0 if main's ret is never scanned: a program whose main never
	// returns (e.g. ends in an infinite loop) leaves endOfMain at 0,
	// which could mis-classify an unrelated block. sawMainRet
	// distinguishes "really is line 0" from "never set" for diagnostics.
	endOfMain  int
	sawMainRet bool
}

// NewScanner returns a Scanner writing into col and wl, resolving
// indirect targets via trace.
func NewScanner(asm *asmidx.Index, trace *traceidx.Index, col *Collector, wl *Worklist, dbg, warn *log.Logger) *Scanner {
	return &Scanner{
		asm:   asm,
		trace: trace,
		col:   col,
		wl:    wl,
		dbg:   dbg,
		warn:  warn,
	}
}

// EndOfMain returns the line of main's ret instruction, and whether it
// has been scanned yet.
func (s *Scanner) EndOfMain() (int, bool) {
	return s.endOfMain, s.sawMainRet
}

// Scan walks the function starting at entry until a blank line (the
// function-terminator marker in the disassembly dump) is reached.
func (s *Scanner) Scan(entry int) error {
	isMain := s.asm.IsEntryOf(entry, "main")
	s.col.AddStart(entry)

	for i := entry; ; i++ {
		if s.asm.IsBlank(i) {
			return nil
		}
		tokens := s.asm.Tokens(i)
		if !rv.IsValidInstruction(tokens) {
			continue
		}
		mnemonic := rv.Mnemonic(tokens)
		switch rv.ClassifyMnemonic(mnemonic) {
		case rv.ClassRet:
			if err := s.scanRet(i, isMain); err != nil {
				return err
			}
		case rv.ClassCondBranch:
			if err := s.scanCondBranch(i, tokens); err != nil {
				return err
			}
		case rv.ClassJAL:
			if err := s.scanJAL(i, tokens); err != nil {
				return err
			}
		case rv.ClassJ:
			if err := s.scanJ(i, tokens); err != nil {
				return err
			}
		case rv.ClassJALR:
			if err := s.scanJALR(i, tokens); err != nil {
				return err
			}
		case rv.ClassJR:
			if err := s.scanJR(i, tokens); err != nil {
				return err
			}
		}
	}
}

func (s *Scanner) scanRet(i int, isMain bool) error {
	if isMain {
		s.col.AddEnd(i)
		s.endOfMain = i
		s.sawMainRet = true
		return nil
	}
	addr, err := rv.ParseAddr(s.asm.Tokens(i)[0])
	if err != nil {
		return errors.WithStack(err)
	}
	target, err := s.trace.NextAfter(addr, s.asm)
	if err != nil {
		return errors.WithStack(err)
	}
	if target == traceidx.NotTaken {
		s.warn.Printf("ret at line %d: no trace observed a return to resolve its target", i)
	}
	s.col.AddEnd(i, target)
	return nil
}

func (s *Scanner) scanCondBranch(i int, tokens []string) error {
	t, err := s.asm.LineOfAddressString(rv.BranchTarget(tokens))
	if err != nil {
		return errors.WithStack(err)
	}
	s.col.AddStart(i + 1)
	s.col.AddStart(t)
	s.col.AddEnd(i, i+1, t)
	s.col.AddEnd(t - 1)
	return nil
}

func (s *Scanner) scanJAL(i int, tokens []string) error {
	t, err := s.asm.LineOfAddressString(rv.JALTarget(tokens))
	if err != nil {
		return errors.WithStack(err)
	}
	s.col.AddStart(i + 1)
	s.col.AddStart(t)
	s.col.AddEnd(i, t)
	s.wl.Push(t)
	return nil
}

func (s *Scanner) scanJ(i int, tokens []string) error {
	t, err := s.asm.LineOfAddressString(rv.JTarget(tokens))
	if err != nil {
		return errors.WithStack(err)
	}
	s.col.AddStart(i + 1)
	s.col.AddStart(t)
	s.col.AddEnd(i, t)
	s.col.AddEnd(t - 1)
	return nil
}

// scanJALR treats jalr as a call: the target, if resolved by the trace,
// is pushed as a new function to visit. This is an approximation (a
// jalr may also be a return), accepted as a known policy choice rather
// than guessed at further without more context than a single mnemonic
// gives.
func (s *Scanner) scanJALR(i int, tokens []string) error {
	addr, err := rv.ParseAddr(tokens[0])
	if err != nil {
		return errors.WithStack(err)
	}
	target, err := s.trace.NextAfter(addr, s.asm)
	if err != nil {
		return errors.WithStack(err)
	}
	s.col.AddStart(i + 1)
	if target == traceidx.NotTaken {
		s.warn.Printf("jalr at line %d: no trace observed its target", i)
	} else {
		s.col.AddStart(target)
		s.wl.Push(target)
	}
	s.col.AddEnd(i, target)
	return nil
}

// scanJR treats jr as an intra-function indirect branch: unlike jalr,
// the target is not enqueued as a new function.
func (s *Scanner) scanJR(i int, tokens []string) error {
	addr, err := rv.ParseAddr(tokens[0])
	if err != nil {
		return errors.WithStack(err)
	}
	target, err := s.trace.NextAfter(addr, s.asm)
	if err != nil {
		return errors.WithStack(err)
	}
	s.col.AddStart(i + 1)
	if target == traceidx.NotTaken {
		s.warn.Printf("jr at line %d: no trace observed its target", i)
	} else {
		s.col.AddStart(target)
		s.col.AddEnd(target - 1)
	}
	s.col.AddEnd(i, target)
	return nil
}
