// Package irmirror builds a minimal LLVM IR skeleton mirroring a
// reconstructed CFG's control-flow shape: one ir.Func, one ir.Block per
// basic block, and branch instructions matching each node's recorded
// successors. It carries no lifted instructions and performs no
// dataflow or alias analysis, far enough to produce a structurally
// faithful, if instruction-free, IR module.
package irmirror

import (
	"fmt"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/rtsrlab/yelkovan-go/cfgbuild"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

// Mirror builds an *ir.Module containing a single function named name,
// with one basic block per CFG node. Fall-through-only and
// unconditional-successor nodes get an unconditional br; two-successor
// nodes get a condbr guarded by a literal placeholder condition, since
// the engine does not lift the branch's actual operand; terminal nodes
// get a bare ret. A successor left as the NotTaken sentinel has no
// corresponding block (cfgbuild.Build never recurses into it, only
// records it in cfg.Unresolved), so it is treated the same as a
// terminal node rather than indexed into blocks.
func Mirror(cfg *cfgbuild.CFG, name string) *ir.Module {
	m := ir.NewModule()
	fn := m.NewFunc(name, types.Void)

	blocks := make(map[int]*ir.Block, len(cfg.Nodes))
	starts := make([]int, 0, len(cfg.Nodes))
	for start := range cfg.Nodes {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for _, start := range starts {
		blocks[start] = fn.NewBlock(blockName(start))
	}

	for _, start := range starts {
		n := cfg.Nodes[start]
		b := blocks[start]
		s1, ok1 := n.Successor1()
		if ok1 && s1 == traceidx.NotTaken {
			ok1 = false
		}
		s2, ok2 := n.Successor2()
		if ok2 && s2 == traceidx.NotTaken {
			ok2 = false
		}
		switch {
		case ok1 && ok2:
			cond := constant.NewInt(types.I1, 0)
			b.NewCondBr(cond, blocks[s1], blocks[s2])
		case ok1:
			b.NewBr(blocks[s1])
		case ok2:
			b.NewBr(blocks[s2])
		default:
			b.NewRet(nil)
		}
	}
	return m
}

func blockName(start int) string {
	return fmt.Sprintf("bb%d", start)
}
