// Package depset stores transitive dependency sets as an append-only arena.
//
// A set is a node with its own projection values and an ordered list of child
// sets. Children must exist before their parent is added, so every arena is
// acyclic by construction. Flattened projections are computed once per node
// and shared by every caller that asks for them.
package depset

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// Ref identifies a node in an Arena. The zero Ref is the empty set.
type Ref uint32

// Empty is the empty dependency set.
const Empty Ref = 0

// IsEmpty reports whether r is the empty set.
func (r Ref) IsEmpty() bool { return r == Empty }

// Projection names a flattened view of a set.
type Projection string

// ClangDeps is the projection carrying the compiler flags that make an
// already compiled module visible to a dependent compile.
const ClangDeps Projection = "clang_deps"

// Node describes a set to add to the arena.
type Node struct {
	Label  string
	Values map[Projection][]string
}

type node struct {
	label    string
	values   map[Projection][]string
	children []Ref
}

type memoKey struct {
	ref  Ref
	proj Projection
}

// Arena owns all dependency sets of one build evaluation.
type Arena struct {
	mu     sync.RWMutex
	nodes  []node
	order  map[Ref][]Ref
	projMu sync.Mutex
	memo   map[memoKey][]string
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{
		order: make(map[Ref][]Ref),
		memo:  make(map[memoKey][]string),
	}
}

// Len returns the number of non-empty sets stored in the arena.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Add appends a new set with the given children and returns its Ref.
// Duplicate and empty children are dropped; the remaining order is kept.
func (a *Arena) Add(n Node, children ...Ref) (Ref, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ref, err := safecast.Conv[Ref](len(a.nodes) + 1)
	if err != nil {
		return Empty, fmt.Errorf("depset arena overflow: %w", err)
	}

	kept := make([]Ref, 0, len(children))
	for _, c := range children {
		if c.IsEmpty() || slices.Contains(kept, c) {
			continue
		}
		if c >= ref {
			return Empty, fmt.Errorf("depset %q: unknown child set #%d", n.Label, c)
		}
		kept = append(kept, c)
	}

	values := make(map[Projection][]string, len(n.Values))
	for p, v := range n.Values {
		values[p] = slices.Clone(v)
	}
	a.nodes = append(a.nodes, node{
		label:    n.Label,
		values:   values,
		children: kept,
	})
	return ref, nil
}

// Children returns the direct children of r.
func (a *Arena) Children(r Ref) []Ref {
	if r.IsEmpty() {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.get(r)
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Labels returns the non-empty labels of every set reachable from r, in
// projection order. Unlabeled grouping sets are skipped.
func (a *Arena) Labels(r Ref) []string {
	order := a.walk(r)
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(order))
	for _, ref := range order {
		n, _ := a.get(ref)
		if n.label == "" {
			continue
		}
		out = append(out, n.label)
	}
	return out
}

// Project flattens projection p over the set r: the node's own values first,
// then each child left to right, visiting every reachable node exactly once.
// The returned slice is shared and must not be modified.
func (a *Arena) Project(r Ref, p Projection) []string {
	if r.IsEmpty() {
		return nil
	}
	key := memoKey{ref: r, proj: p}
	a.projMu.Lock()
	if cached, ok := a.memo[key]; ok {
		a.projMu.Unlock()
		return cached
	}
	a.projMu.Unlock()

	order := a.walk(r)

	a.mu.RLock()
	var out []string
	for _, ref := range order {
		n, _ := a.get(ref)
		out = append(out, n.values[p]...)
	}
	a.mu.RUnlock()
	out = slices.Clip(out)

	a.projMu.Lock()
	defer a.projMu.Unlock()
	if cached, ok := a.memo[key]; ok {
		return cached
	}
	a.memo[key] = out
	return out
}

// walk returns the memoized preorder of nodes reachable from r.
func (a *Arena) walk(r Ref) []Ref {
	if r.IsEmpty() {
		return nil
	}
	a.mu.RLock()
	if cached, ok := a.order[r]; ok {
		a.mu.RUnlock()
		return cached
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.walkLocked(r)
}

func (a *Arena) walkLocked(r Ref) []Ref {
	if cached, ok := a.order[r]; ok {
		return cached
	}
	n, ok := a.get(r)
	if !ok {
		return nil
	}
	seen := map[Ref]struct{}{r: {}}
	out := []Ref{r}
	for _, c := range n.children {
		for _, ref := range a.walkLocked(c) {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	out = slices.Clip(out)
	a.order[r] = out
	return out
}

func (a *Arena) get(r Ref) (node, bool) {
	idx := int(r) - 1
	if idx < 0 || idx >= len(a.nodes) {
		return node{}, false
	}
	return a.nodes[idx], true
}
