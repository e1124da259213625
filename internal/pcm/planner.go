package pcm

import (
	"context"
	"fmt"

	"sdkpcm/internal/depset"
	"sdkpcm/internal/registry"
	"sdkpcm/internal/sdk"
	"sdkpcm/internal/trace"
)

// Planner assembles SDK module compiles for a single build evaluation. It
// owns the evaluation's dependency set arena and module registry.
//
// Modules must be compiled after their dependencies. A Planner is not safe
// for concurrent use.
type Planner struct {
	Toolchain sdk.Toolchain
	OutputDir string

	sets *depset.Arena
	reg  *registry.Registry
	own  map[string]depset.Ref // module name -> set holding the module and its deps
}

// NewPlanner creates a planner with a fresh arena and registry.
func NewPlanner(tc sdk.Toolchain, outputDir string) *Planner {
	return &Planner{
		Toolchain: tc,
		OutputDir: outputDir,
		sets:      depset.NewArena(),
		reg:       registry.New(),
		own:       make(map[string]depset.Ref),
	}
}

// Registry returns the evaluation's module registry.
func (p *Planner) Registry() *registry.Registry { return p.reg }

// Sets returns the evaluation's dependency set arena.
func (p *Planner) Sets() *depset.Arena { return p.sets }

// ModuleSet returns the dependency set of a compiled module including itself.
func (p *Planner) ModuleSet(moduleName string) (depset.Ref, bool) {
	ref, ok := p.own[moduleName]
	return ref, ok
}

// DepsFor builds the dependency set of mod from the sets of its already
// compiled direct dependencies.
func (p *Planner) DepsFor(mod sdk.UncompiledModule) (depset.Ref, error) {
	refs := make([]depset.Ref, 0, len(mod.Deps))
	for _, dep := range mod.Deps {
		ref, ok := p.own[dep]
		if !ok {
			if _, err := p.reg.Get(dep); err != nil {
				return depset.Empty, fmt.Errorf("module %q depends on %w", mod.ModuleName, err)
			}
			return depset.Empty, fmt.Errorf("module %q depends on %q which has no dependency set", mod.ModuleName, dep)
		}
		refs = append(refs, ref)
	}
	switch len(refs) {
	case 0:
		return depset.Empty, nil
	case 1:
		return refs[0], nil
	default:
		return p.sets.Add(depset.Node{}, refs...)
	}
}

// Compile assembles the invocation for mod and registers it.
func (p *Planner) Compile(ctx context.Context, mod sdk.UncompiledModule) (sdk.Invocation, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "module:"+mod.ModuleName, trace.CurrentSpan(ctx).SpanID)

	deps, err := p.DepsFor(mod)
	if err != nil {
		span.End("error")
		return sdk.Invocation{}, err
	}
	req := Request{
		Module:    mod,
		Toolchain: p.Toolchain,
		Deps:      deps,
		Sets:      p.sets,
		OutputDir: p.OutputDir,
	}
	inv, info, err := assemble(&req, p.reg)
	if err != nil {
		span.End("error")
		return sdk.Invocation{}, err
	}
	// The module's own node must exist before it is registered: a registered
	// module without one would collide on retry and starve its dependents.
	self, err := p.sets.Add(depset.Node{
		Label:  mod.ModuleName,
		Values: map[depset.Projection][]string{depset.ClangDeps: ClangDepFlags(info)},
	}, deps)
	if err != nil {
		span.End("error")
		return sdk.Invocation{}, err
	}
	if err := p.reg.Set(mod.ModuleName, info); err != nil {
		span.End("error")
		return sdk.Invocation{}, err
	}
	p.own[mod.ModuleName] = self

	span.WithExtra("deps", fmt.Sprint(len(p.sets.Labels(deps)))).End(inv.Output)
	return inv, nil
}

// ClangDepFlags returns the flags a dependent compile needs to see a compiled module.
func ClangDepFlags(info sdk.CompiledModule) []string {
	return []string{
		"-Xcc", "-fmodule-file=" + info.ModuleName + "=" + info.Output,
		"-Xcc", "-fmodule-map-file=" + info.InputRelativePath,
	}
}
