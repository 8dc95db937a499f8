// Package dotgraph serializes a reconstructed CFG as DOT/Graphviz text
// and hands it to the external dot binary to produce a rendered PDF.
package dotgraph

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rtsrlab/yelkovan-go/cfgbuild"
)

// Write returns cfg rendered as DOT text, in a deterministic order so
// repeated runs over the same CFG produce byte-identical output.
func Write(cfg *cfgbuild.CFG) string {
	var b strings.Builder
	b.WriteString("digraph cfg {\n")
	b.WriteString("\tnode [shape=rectangle, fontname=\"helvetica\", fontsize=8];\n")

	starts := make([]int, 0, len(cfg.Nodes))
	for start := range cfg.Nodes {
		starts = append(starts, start)
	}
	sort.Ints(starts)
	for _, start := range starts {
		n := cfg.Nodes[start]
		fmt.Fprintf(&b, "\t%d [label=%q];\n", start, n.Label())
	}
	for _, e := range cfg.Edges {
		fmt.Fprintf(&b, "\t%d -> %d;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	return b.String()
}

// RenderPDF writes cfg's DOT text to dotPath and shells out to the
// system's dot binary to render it to pdfPath.
func RenderPDF(cfg *cfgbuild.CFG, dotPath, pdfPath string) error {
	text := Write(cfg)
	if err := ioutil.WriteFile(dotPath, []byte(text), 0o644); err != nil {
		return errors.WithStack(err)
	}
	cmd := exec.Command("dot", "-Tpdf", "-o", pdfPath, dotPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "dot -Tpdf %s", dotPath)
	}
	return nil
}
