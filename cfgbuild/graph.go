package cfgbuild

import (
	"fmt"

	"github.com/pkg/errors"
)

// Node is a basic block node of the CFG: one per reconciled start,
// carrying its end line and 0-2 successor lines in order (fall-through
// first, branch target second, for a two-successor node).
type Node struct {
	Start      int
	End        int
	Successors []int
}

// Successor1 returns the node's first recorded successor line, and
// whether one exists (printed as "null" when absent).
func (n *Node) Successor1() (int, bool) {
	if len(n.Successors) >= 1 {
		return n.Successors[0], true
	}
	return 0, false
}

// Successor2 returns the node's second recorded successor line.
func (n *Node) Successor2() (int, bool) {
	if len(n.Successors) >= 2 {
		return n.Successors[1], true
	}
	return 0, false
}

// Label renders the node's attributes for graph and diagnostic output
// ("Start: <s>; End: <e>").
func (n *Node) Label() string {
	return fmt.Sprintf("Start: %d; End: %d", n.Start, n.End)
}

// Edge is a directed control-flow edge between two node starts.
type Edge struct {
	From int
	To   int
}

// CFG is the reconstructed control flow graph: one node per basic
// block, fan-out edges to its successors, rooted at main's entry.
type CFG struct {
	Root  int
	Nodes map[int]*Node
	Edges []Edge

	// Order records node starts in the order they were first added,
	// i.e. DFS discovery order from Root. Useful for deterministic
	// diagnostic and DOT output.
	Order []int

	// Unresolved records end_line positions whose successor was the
	// NotTaken sentinel: the edge could not be built because no trace
	// observed the indirect transfer's target.
	Unresolved []int
}

// Build constructs the CFG by recursive depth-first traversal rooted at
// root. Nodes are keyed by start_line; revisiting an already-added node
// merges at that node (adds the edge, does not recurse again), which is
// what prunes cycles.
func Build(reconciled *Stage, root int) (*CFG, error) {
	startIndex := make(map[int]int, len(reconciled.Starts))
	for k, s := range reconciled.Starts {
		startIndex[s] = k
	}

	cfg := &CFG{
		Root:  root,
		Nodes: make(map[int]*Node),
	}

	var build func(parent *int, node int) error
	build = func(parent *int, node int) error {
		if _, ok := cfg.Nodes[node]; ok {
			if parent != nil {
				cfg.Edges = append(cfg.Edges, Edge{From: *parent, To: node})
			}
			return nil
		}

		k, ok := startIndex[node]
		if !ok {
			return errors.Wrapf(ErrDanglingSuccessor, "line %d", node)
		}

		n := &Node{
			Start:      reconciled.Starts[k],
			End:        reconciled.Ends[k].EndLine,
			Successors: reconciled.Ends[k].Successors,
		}
		cfg.Nodes[node] = n
		cfg.Order = append(cfg.Order, node)
		if parent != nil {
			cfg.Edges = append(cfg.Edges, Edge{From: *parent, To: node})
		}

		for _, succ := range n.Successors {
			if isNotTaken(succ) {
				cfg.Unresolved = append(cfg.Unresolved, n.End)
				continue
			}
			self := node
			if err := build(&self, succ); err != nil {
				return err
			}
		}
		return nil
	}

	if err := build(nil, root); err != nil {
		return nil, err
	}
	return cfg, nil
}
