// Package cfgbuild implements the CFG reconstruction engine: the
// worklist-driven traversal of a program's call graph, reconciliation of
// overlapping basic-block boundary reports, and assembly of the
// resulting directed graph.
package cfgbuild

import (
	"io/ioutil"
	"log"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/asmidx"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

// Analyzer bundles every piece of state a single analysis run owns,
// instead of threading them through free functions or globals. An
// Analyzer is used once, for one (assembly, traces) pair.
type Analyzer struct {
	Asm   *asmidx.Index
	Trace *traceidx.Index

	dbg  *log.Logger
	warn *log.Logger

	col *Collector
	wl  *Worklist
	sc  *Scanner

	// Pre and Post are set by Analyze after reconciliation, for callers
	// that want to print the pre/post-inference boundary snapshots.
	Pre  *Stage
	Post *Stage
}

// New returns an Analyzer over the given Assembly and Trace Index. dbg
// and warn receive non-fatal diagnostics; pass nil for either to
// silence it.
func New(asm *asmidx.Index, trace *traceidx.Index, dbg, warn *log.Logger) *Analyzer {
	if dbg == nil {
		dbg = log.New(ioutil.Discard, "", 0)
	}
	if warn == nil {
		warn = log.New(ioutil.Discard, "", 0)
	}
	col := NewCollector()
	wl := NewWorklist()
	return &Analyzer{
		Asm:   asm,
		Trace: trace,
		dbg:   dbg,
		warn:  warn,
		col:   col,
		wl:    wl,
		sc:    NewScanner(asm, trace, col, wl, dbg, warn),
	}
}

// Analyze runs the full pipeline: finds main, drains the Function
// Worklist through the Function Scanner, reconciles the accumulated
// boundaries, and builds the CFG rooted at main's entry.
func (a *Analyzer) Analyze() (*CFG, error) {
	mainEntry, err := a.Asm.MainEntry()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	a.wl.Push(mainEntry)

	for {
		entry, ok := a.wl.Next()
		if !ok {
			break
		}
		a.dbg.Printf("scanning function at line %d", entry)
		if err := a.sc.Scan(entry); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	endOfMain, sawMainRet := a.sc.EndOfMain()
	if !sawMainRet {
		a.warn.Printf("main's own ret was never scanned; end-of-main defaults to line %d, which may misclassify an unrelated block", endOfMain)
	}

	pre, post, err := Reconcile(a.col, endOfMain)
	a.Pre, a.Post = pre, post
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg, err := Build(post, mainEntry)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	for _, end := range cfg.Unresolved {
		a.warn.Printf("block ending at line %d has an unresolved (NotTaken) successor", end)
	}
	return cfg, nil
}
