// Package dag orders SDK modules so every module comes after its dependencies.
package dag

import (
	"sort"

	"sdkpcm/internal/sdk"
)

// ModuleID indexes a module name inside a ModuleIndex.
type ModuleID uint32

// ModuleIndex assigns dense IDs to module names in sorted order.
type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// BuildIndex collects declared modules and every dependency they name.
// Empty names get no ID; BuildGraph reports them.
func BuildIndex(mods []sdk.UncompiledModule) ModuleIndex {
	uniq := make(map[string]struct{}, len(mods))
	for _, m := range mods {
		if m.ModuleName != "" {
			uniq[m.ModuleName] = struct{}{}
		}
		for _, dep := range m.Deps {
			if dep != "" {
				uniq[dep] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]ModuleID, len(names))
	for i, name := range names {
		nameToID[name] = ModuleID(i)
	}
	return ModuleIndex{NameToID: nameToID, IDToName: names}
}
