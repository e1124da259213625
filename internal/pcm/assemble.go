package pcm

import (
	"errors"
	"fmt"
	"path/filepath"

	"sdkpcm/internal/depset"
	"sdkpcm/internal/registry"
	"sdkpcm/internal/sdk"
	"sdkpcm/internal/sdkpath"
)

var (
	errNoCompiler   = errors.New("toolchain has no compiler")
	errNoModuleName = errors.New("module has no module name")
)

// Request is one SDK module compile.
type Request struct {
	Module    sdk.UncompiledModule
	Toolchain sdk.Toolchain
	Deps      depset.Ref    // already compiled dependencies of Module
	Sets      *depset.Arena // arena owning Deps; may be nil when Deps is empty
	OutputDir string        // directory of the declared .pcm; empty means the working directory
}

// Output returns the declared artifact path for the request.
func (r *Request) Output() string {
	name := sdk.OutputName(r.Module.ModuleName)
	if r.OutputDir == "" {
		return name
	}
	return filepath.Join(r.OutputDir, name)
}

// Assemble builds the compiler invocation for req and registers the compiled
// module in reg under its module name. Nothing is registered on error.
//
// Argument order is significant because later flags override earlier ones:
// partial command, -sdk, toolchain flags, -resource-dir, dependency flags,
// -o and the module map, system module flags, and last the search root.
func Assemble(req *Request, reg *registry.Registry) (sdk.Invocation, error) {
	inv, info, err := assemble(req, reg)
	if err != nil {
		return sdk.Invocation{}, err
	}
	if err := reg.Set(info.ModuleName, info); err != nil {
		return sdk.Invocation{}, err
	}
	return inv, nil
}

// assemble builds the invocation and its registry record without writing
// to reg; reg is only consulted for collisions.
func assemble(req *Request, reg *registry.Registry) (sdk.Invocation, sdk.CompiledModule, error) {
	if req == nil {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("missing compile request")
	}
	mod := req.Module
	tc := req.Toolchain
	if mod.ModuleName == "" {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: %w", mod.Name, errNoModuleName)
	}
	if tc.Compiler == "" {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: %w", mod.ModuleName, errNoCompiler)
	}
	if !req.Deps.IsEmpty() && req.Sets == nil {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: dependency set without arena", mod.ModuleName)
	}
	if reg == nil {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: missing module registry", mod.ModuleName)
	}
	if reg.Has(mod.ModuleName) {
		existing, _ := reg.Get(mod.ModuleName)
		return sdk.Invocation{}, sdk.CompiledModule{}, &registry.CollisionError{Name: mod.ModuleName, Existing: existing}
	}

	modulemap, err := sdkpath.Expand(tc.SDKPath, tc.ResourceDir, mod.InputRelativePath)
	if err != nil {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: %w", mod.ModuleName, err)
	}
	search, err := sdkpath.ResolveExpanded(tc, mod.InputRelativePath, mod.IsFramework)
	if err != nil {
		return sdk.Invocation{}, sdk.CompiledModule{}, fmt.Errorf("module %q: %w", mod.ModuleName, err)
	}

	var depFlags []string
	if !req.Deps.IsEmpty() {
		depFlags = req.Sets.Project(req.Deps, depset.ClangDeps)
	}
	output := req.Output()

	args := make([]string, 0, len(mod.PartialCmd)+len(tc.CompilerFlags)+len(depFlags)+len(systemModuleFlags)+12)
	args = append(args, mod.PartialCmd...)
	args = append(args, "-sdk", tc.SDKPath)
	args = append(args, tc.CompilerFlags...)
	if tc.HasResourceDir() {
		args = append(args, "-resource-dir", tc.ResourceDir)
	}
	args = append(args, depFlags...)
	args = append(args, "-o", output, modulemap)
	args = append(args, systemModuleFlags...)
	args = append(args, "-Xcc", search.Kind.Flag(), "-Xcc", search.Root)

	inv := sdk.Invocation{
		ModuleName: mod.ModuleName,
		Executable: tc.Compiler,
		Args:       args,
		Output:     output,
	}

	info := sdk.CompiledModule{
		Name:              mod.Name,
		ModuleName:        mod.ModuleName,
		IsFramework:       mod.IsFramework,
		Output:            output,
		IsSwiftModule:     false,
		Deps:              req.Deps,
		InputRelativePath: modulemap,
	}
	return inv, info, nil
}
