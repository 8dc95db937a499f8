package cfgbuild

// Worklist is a LIFO, dedup-on-visit stack of function entry
// line-indices pending analysis. LIFO is chosen for cache locality of
// recently discovered code; no ordering property of the final CFG
// depends on the traversal order.
type Worklist struct {
	stack   []int
	visited map[int]bool
}

// NewWorklist returns an empty Worklist.
func NewWorklist() *Worklist {
	return &Worklist{
		visited: make(map[int]bool),
	}
}

// Push enqueues a function entry line for analysis. A function may be
// pushed multiple times (e.g. called from several sites); dedup happens
// at Next, not at Push.
func (w *Worklist) Push(entry int) {
	w.stack = append(w.stack, entry)
}

// Next pops entries until it finds one not already visited, marks it
// visited, and returns it. It returns ok=false once the worklist is
// drained of unvisited entries.
func (w *Worklist) Next() (entry int, ok bool) {
	for len(w.stack) > 0 {
		last := len(w.stack) - 1
		entry = w.stack[last]
		w.stack = w.stack[:last]
		if w.visited[entry] {
			continue
		}
		w.visited[entry] = true
		return entry, true
	}
	return 0, false
}

// Visited reports whether entry has already been processed.
func (w *Worklist) Visited(entry int) bool {
	return w.visited[entry]
}
