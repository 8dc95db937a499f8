package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"

	"github.com/rtsrlab/yelkovan-go/cfgbuild"
	"github.com/rtsrlab/yelkovan-go/dotgraph"
)

// printStage pretty-prints a reconciliation snapshot's starts and ends,
// labeled pre- or post-inference.
func printStage(label string, s *cfgbuild.Stage) {
	fmt.Printf("=== [ %s ] ===\n", label)
	fmt.Printf("starts: %# v\n", pretty.Formatter(s.Starts))
	fmt.Printf("ends: %# v\n", pretty.Formatter(s.Ends))
}

// printCFG pretty-prints every node's attributes in discovery order,
// then the DOT dump and the root's two recorded successors.
func printCFG(cfg *cfgbuild.CFG) {
	fmt.Println("=== [ cfg nodes ] ===")
	for _, start := range cfg.Order {
		n := cfg.Nodes[start]
		fmt.Printf("%s: %# v\n", n.Label(), pretty.Formatter(n))
	}

	fmt.Println("=== [ dot ] ===")
	fmt.Print(dotgraph.Write(cfg))

	root := cfg.Nodes[cfg.Root]
	s1, ok1 := root.Successor1()
	s2, ok2 := root.Successor2()
	fmt.Fprintf(os.Stdout, "root successors: %s, %s\n", successorString(s1, ok1), successorString(s2, ok2))
}

func successorString(line int, ok bool) string {
	if !ok {
		return "null"
	}
	return fmt.Sprintf("%d", line)
}
