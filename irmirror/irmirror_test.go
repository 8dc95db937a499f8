package irmirror

import (
	"testing"

	"github.com/llir/llvm/ir"

	"github.com/rtsrlab/yelkovan-go/cfgbuild"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

func TestMirrorBuildsOneBlockPerNode(t *testing.T) {
	stage := &cfgbuild.Stage{
		Starts: []int{1, 3, 6},
		Ends: []cfgbuild.EndRecord{
			{EndLine: 2, Successors: []int{3, 6}},
			{EndLine: 4},
			{EndLine: 7},
		},
	}
	cfg, err := cfgbuild.Build(stage, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	m := Mirror(cfg, "main")
	if len(m.Funcs) != 1 {
		t.Fatalf("len(Funcs) = %d, want 1", len(m.Funcs))
	}
	fn := m.Funcs[0]
	if fn.Name() != "main" {
		t.Errorf("func name = %q, want %q", fn.Name(), "main")
	}
	if len(fn.Blocks) != len(cfg.Nodes) {
		t.Errorf("len(Blocks) = %d, want %d", len(fn.Blocks), len(cfg.Nodes))
	}
}

// A node whose sole successor is the NotTaken sentinel has no matching
// block in cfg.Nodes; Mirror must treat it as terminal instead of
// indexing it, or it would hand NewBr a nil *ir.Block.
func TestMirrorTreatsUnresolvedSuccessorAsTerminal(t *testing.T) {
	stage := &cfgbuild.Stage{
		Starts: []int{1},
		Ends: []cfgbuild.EndRecord{
			{EndLine: 2, Successors: []int{traceidx.NotTaken}},
		},
	}
	cfg, err := cfgbuild.Build(stage, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	m := Mirror(cfg, "main")
	fn := m.Funcs[0]
	if len(fn.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(fn.Blocks))
	}
	term := fn.Blocks[0].Term
	if _, ok := term.(*ir.TermRet); !ok {
		t.Errorf("terminator = %T, want *ir.TermRet", term)
	}
}
