package sdkpath

import (
	"strings"

	"sdkpcm/internal/sdk"
)

// FlagKind selects how a search root is handed to the C-family front end.
type FlagKind uint8

const (
	// Include adds a header search root (-I).
	Include FlagKind = iota + 1
	// FrameworkSearch adds a framework search root (-F).
	FrameworkSearch
)

// Flag returns the compiler flag for k.
func (k FlagKind) Flag() string {
	switch k {
	case Include:
		return "-I"
	case FrameworkSearch:
		return "-F"
	default:
		return ""
	}
}

func (k FlagKind) String() string {
	switch k {
	case Include:
		return "include"
	case FrameworkSearch:
		return "framework-search"
	default:
		return "unknown"
	}
}

// Number of trailing components stripped from a module map path to reach its search root.
const (
	moduleStrip    = 1 // module.modulemap
	frameworkStrip = 3 // module.modulemap, Modules, Name.framework
)

// SearchPath is a search root together with its flag kind. Root keeps any
// leading path token so it can be passed to Expand.
type SearchPath struct {
	Kind FlagKind
	Root string
}

// Resolve derives the search root for a module map path.
//
// Framework module maps are expected at Name.framework/Modules/<file>; any
// other layout is reported rather than guessed at.
func Resolve(rel string, isFramework bool) (SearchPath, error) {
	token, rest := splitToken(rel)
	var parts []string
	for _, p := range strings.Split(rest, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	want, kind := moduleStrip, Include
	if isFramework {
		want, kind = frameworkStrip, FrameworkSearch
	}
	if len(parts) < want {
		return SearchPath{}, &StructuralPathError{
			Path:        rel,
			IsFramework: isFramework,
			Have:        len(parts),
			Want:        want,
		}
	}
	if isFramework {
		n := len(parts)
		if parts[n-2] != "Modules" || !strings.HasSuffix(parts[n-3], ".framework") {
			return SearchPath{}, &StructuralPathError{
				Path:        rel,
				IsFramework: true,
				Have:        n,
				Want:        want,
				Err:         ErrFrameworkLayout,
			}
		}
	}

	root := strings.Join(parts[:len(parts)-want], "/")
	switch {
	case token != "" && root != "":
		root = token + "/" + root
	case token != "":
		root = token
	}
	return SearchPath{Kind: kind, Root: root}, nil
}

// ResolveExpanded resolves the search root for rel and expands it with tc.
func ResolveExpanded(tc sdk.Toolchain, rel string, isFramework bool) (SearchPath, error) {
	sp, err := Resolve(rel, isFramework)
	if err != nil {
		return SearchPath{}, err
	}
	expanded, err := Expand(tc.SDKPath, tc.ResourceDir, sp.Root)
	if err != nil {
		return SearchPath{}, err
	}
	sp.Root = expanded
	return sp, nil
}
