package cfgbuild

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rtsrlab/yelkovan-go/asmidx"
	"github.com/rtsrlab/yelkovan-go/traceidx"
)

// loadAsm writes lines to a temp .dump file and loads an Assembly Index
// from it.
func loadAsm(t *testing.T, lines []string) *asmidx.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.dump")
	if err := ioutil.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	idx, err := asmidx.Load(path)
	if err != nil {
		t.Fatalf("asmidx.Load: %v", err)
	}
	return idx
}

// loadTrace writes a single trace file and returns a Trace Index over
// it. Pass nil for no trace files at all.
func loadTrace(t *testing.T, lines []string) *traceidx.Index {
	t.Helper()
	if lines == nil {
		return traceidx.New(nil)
	}
	path := filepath.Join(t.TempDir(), "a.trc")
	if err := ioutil.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write trace: %v", err)
	}
	return traceidx.New([]string{path})
}

func discardLoggers() (*log.Logger, *log.Logger) {
	l := log.New(ioutil.Discard, "", 0)
	return l, l
}
