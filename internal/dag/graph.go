package dag

import (
	"errors"
	"fmt"
	"slices"

	"sdkpcm/internal/sdk"
)

var (
	// ErrMissingModule indicates a dependency on a module that is not declared.
	ErrMissingModule = errors.New("missing module")
	// ErrDuplicateModule indicates a module declared twice.
	ErrDuplicateModule = errors.New("duplicate module")
	// ErrSelfDependency indicates a module listing itself as a dependency.
	ErrSelfDependency = errors.New("module depends on itself")
	// ErrUnnamedModule indicates a module or dependency with an empty module name.
	ErrUnnamedModule = errors.New("module has no module name")
	// ErrCycle indicates a dependency cycle.
	ErrCycle = errors.New("dependency cycle")
)

// Graph has an edge from every dependency to each module depending on it.
type Graph struct {
	Edges   [][]ModuleID // Edges[dep] = dependents, sorted
	Indeg   []int        // number of present dependencies
	Present []bool       // declared, not merely referenced
}

// Slot holds the declared module for an ID.
type Slot struct {
	Module  sdk.UncompiledModule
	Present bool
}

// BuildGraph links declared modules. Problems are collected rather than
// stopping at the first one; the graph only contains valid edges.
func BuildGraph(idx ModuleIndex, mods []sdk.UncompiledModule) (Graph, []Slot, []error) {
	n := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	slots := make([]Slot, n)
	var problems []error

	for i, m := range mods {
		if m.ModuleName == "" {
			problems = append(problems, fmt.Errorf("module #%d (%q): %w", i, m.Name, ErrUnnamedModule))
			continue
		}
		id, ok := idx.NameToID[m.ModuleName]
		if !ok {
			continue
		}
		if slots[id].Present {
			problems = append(problems, fmt.Errorf("%w %q", ErrDuplicateModule, m.ModuleName))
			continue
		}
		slots[id] = Slot{Module: m, Present: true}
		g.Present[id] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slot.Module.Deps))
		for _, dep := range slot.Module.Deps {
			if dep == "" {
				problems = append(problems, fmt.Errorf("module %q dependency: %w", slot.Module.ModuleName, ErrUnnamedModule))
				continue
			}
			depID, ok := idx.NameToID[dep]
			if !ok {
				continue
			}
			if int(depID) == from {
				problems = append(problems, fmt.Errorf("%q: %w", slot.Module.ModuleName, ErrSelfDependency))
				continue
			}
			if !g.Present[depID] {
				problems = append(problems, fmt.Errorf("module %q depends on %w %q", slot.Module.ModuleName, ErrMissingModule, dep))
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			g.Edges[depID] = append(g.Edges[depID], ModuleID(from))
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g, slots, problems
}
