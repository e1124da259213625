package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"sdkpcm/internal/sdk"
)

// Topo is the result of a Kahn toposort.
type Topo struct {
	Order   []ModuleID   // dependencies before dependents
	Batches [][]ModuleID // waves of mutually independent modules
	Cyclic  bool
	Cycles  []ModuleID // modules left with unresolved dependencies
}

// ToposortKahn orders the present modules of g. Ties are broken by ID so the
// order is deterministic.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]ModuleID, 0, n)}

	active := 0
	current := make([]ModuleID, 0, n)
	for i := range n {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)
		var next []ModuleID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range n {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
	}
	return topo
}

func mustID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}

// Plan orders mods into batches; every module appears after all of its
// dependencies. Graph problems and cycles are reported as a joined error.
func Plan(mods []sdk.UncompiledModule) ([][]sdk.UncompiledModule, error) {
	idx := BuildIndex(mods)
	g, slots, problems := BuildGraph(idx, mods)
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	topo := ToposortKahn(g)
	if topo.Cyclic {
		names := make([]string, len(topo.Cycles))
		for i, id := range topo.Cycles {
			names[i] = idx.IDToName[id]
		}
		return nil, fmt.Errorf("%w among: %s", ErrCycle, strings.Join(names, ", "))
	}
	out := make([][]sdk.UncompiledModule, len(topo.Batches))
	for i, batch := range topo.Batches {
		out[i] = make([]sdk.UncompiledModule, len(batch))
		for j, id := range batch {
			out[i][j] = slots[id].Module
		}
	}
	return out, nil
}
