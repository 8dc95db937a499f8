// The yelkovan tool reconstructs the control-flow graph of a RISC-V
// binary from its disassembly and one or more execution traces,
// starting at main and following reachable call chains.
package main

import (
	"flag"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewkiz/pkg/term"
	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/asmidx"
	"github.com/rtsrlab/yelkovan-go/cfgbuild"
	"github.com/rtsrlab/yelkovan-go/dotgraph"
	"github.com/rtsrlab/yelkovan-go/irmirror"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

var (
	// dbg is a logger which logs debug messages with "yelkovan:" prefix
	// to standard error.
	dbg = log.New(os.Stderr, term.MagentaBold("yelkovan:")+" ", 0)
	// warn is a logger which logs warning messages with "warning:"
	// prefix to standard error.
	warn = log.New(os.Stderr, term.RedBold("warning:")+" ", 0)
)

func main() {
	var (
		quiet bool
		dir   string
		ir    bool
	)
	flag.BoolVar(&quiet, "q", false, "suppress non-error messages")
	flag.StringVar(&dir, "dir", ".", "working directory to scan for .dump/.trc input files")
	flag.BoolVar(&ir, "ir", false, "also write a structural LLVM IR mirror of the CFG to cfg.ll")
	flag.Parse()
	if quiet {
		dbg.SetOutput(ioutil.Discard)
	}

	if err := run(dir, ir); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(dir string, ir bool) error {
	cfg, err := loadConfig(filepath.Join(dir, "yelkovan.json"))
	if err != nil {
		return errors.WithStack(err)
	}

	asmPath, tracePaths, err := resolveInputs(dir, cfg)
	if err != nil {
		return errors.WithStack(err)
	}
	dbg.Printf("assembly: %s", asmPath)
	for _, p := range tracePaths {
		dbg.Printf("trace: %s", p)
	}

	asm, err := asmidx.Load(asmPath)
	if err != nil {
		return errors.WithStack(err)
	}
	trace := traceidx.New(tracePaths)

	a := cfgbuild.New(asm, trace, dbg, warn)
	graph, err := a.Analyze()
	if err != nil {
		// A missing main, a missing address, or a boundary mismatch
		// aborts the analysis and produces no cfg.pdf, but a is still
		// populated up to the point of failure for diagnostics.
		if a.Pre != nil {
			printStage("starts/ends (pre-inference)", a.Pre)
		}
		if a.Post != nil {
			printStage("starts/ends (post-inference)", a.Post)
		}
		return errors.WithStack(err)
	}

	printStage("starts/ends (pre-inference)", a.Pre)
	printStage("starts/ends (post-inference)", a.Post)
	printCFG(graph)

	pdfPath := filepath.Join(dir, "cfg.pdf")
	dotPath := filepath.Join(dir, "cfg.dot")
	if err := dotgraph.RenderPDF(graph, dotPath, pdfPath); err != nil {
		return errors.WithStack(err)
	}

	if ir {
		m := irmirror.Mirror(graph, "main")
		llPath := filepath.Join(dir, "cfg.ll")
		if err := ioutil.WriteFile(llPath, []byte(m.String()), 0o644); err != nil {
			return errors.WithStack(err)
		}
		dbg.Printf("wrote IR mirror to %s", llPath)
	}
	return nil
}

// resolveInputs finds the assembly and trace files to analyze: a
// yelkovan.json override wins if present, otherwise the working
// directory is scanned once: every ".dump" entry is a candidate
// assembly file (last one wins), every ".trc" entry is appended to the
// trace list.
func resolveInputs(dir string, cfg *config) (asmPath string, tracePaths []string, err error) {
	if cfg != nil && cfg.Assembly != "" {
		return filepath.Join(dir, cfg.Assembly), prefixAll(dir, cfg.Traces), nil
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".dump"):
			asmPath = filepath.Join(dir, name)
		case strings.HasSuffix(name, ".trc"):
			tracePaths = append(tracePaths, filepath.Join(dir, name))
		}
	}
	if asmPath == "" {
		return "", nil, errors.Errorf("no .dump assembly file found in %s", dir)
	}
	return asmPath, tracePaths, nil
}

func prefixAll(dir string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = filepath.Join(dir, name)
	}
	return out
}
