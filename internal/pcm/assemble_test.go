package pcm

import (
	"errors"
	"slices"
	"testing"

	"sdkpcm/internal/depset"
	"sdkpcm/internal/registry"
	"sdkpcm/internal/sdk"
	"sdkpcm/internal/sdkpath"
)

const foundationMap = "$SDKROOT/System/Library/Frameworks/Foundation.framework/Modules/module.modulemap"

func testToolchain() sdk.Toolchain {
	return sdk.Toolchain{
		Compiler:      "swiftc",
		SDKPath:       "/SDK",
		CompilerFlags: []string{"-Xcc", "-DNDEBUG"},
		Target:        "arm64-apple-ios17.0",
	}
}

func foundation() sdk.UncompiledModule {
	return sdk.UncompiledModule{
		Name:              "Foundation",
		ModuleName:        "Foundation",
		IsFramework:       true,
		InputRelativePath: foundationMap,
		PartialCmd:        []string{"-module-name", "Foundation"},
	}
}

func TestAssembleFrameworkOrder(t *testing.T) {
	reg := registry.New()
	req := &Request{Module: foundation(), Toolchain: testToolchain()}
	inv, err := Assemble(req, reg)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []string{
		"-module-name", "Foundation",
		"-sdk", "/SDK",
		"-Xcc", "-DNDEBUG",
		"-o", "Foundation.pcm",
		"/SDK/System/Library/Frameworks/Foundation.framework/Modules/module.modulemap",
		"-Xcc", "-Xclang", "-Xcc", "-emit-module",
		"-Xcc", "-Xclang", "-Xcc", "-fsystem-module",
		"-Xcc", "-F", "-Xcc", "/SDK/System/Library/Frameworks",
	}
	if !slices.Equal(inv.Args, want) {
		t.Fatalf("args mismatch\n got: %q\nwant: %q", inv.Args, want)
	}
	if inv.Executable != "swiftc" || inv.Output != "Foundation.pcm" {
		t.Fatalf("executable %q output %q", inv.Executable, inv.Output)
	}
	if argv := inv.Argv(); argv[0] != "swiftc" || len(argv) != len(want)+1 {
		t.Fatalf("Argv = %q", argv)
	}

	info, err := reg.Get("Foundation")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !info.IsFramework || info.IsSwiftModule || info.Output != "Foundation.pcm" || !info.Deps.IsEmpty() {
		t.Fatalf("registry entry = %+v", info)
	}
	if info.InputRelativePath != "/SDK/System/Library/Frameworks/Foundation.framework/Modules/module.modulemap" {
		t.Fatalf("registered module map = %q", info.InputRelativePath)
	}
}

func TestAssembleModuleIncludeRoot(t *testing.T) {
	reg := registry.New()
	tc := testToolchain()
	tc.ResourceDir = "/toolchain/lib/clang"
	mod := sdk.UncompiledModule{
		Name:              "Darwin",
		ModuleName:        "Darwin",
		InputRelativePath: "usr/include/module.modulemap",
	}
	inv, err := Assemble(&Request{Module: mod, Toolchain: tc, OutputDir: "out"}, reg)
	if err != nil {
		t.Fatal(err)
	}
	idx := slices.Index(inv.Args, "-resource-dir")
	if idx < 0 || inv.Args[idx+1] != "/toolchain/lib/clang" {
		t.Fatalf("missing -resource-dir in %q", inv.Args)
	}
	if sdkIdx := slices.Index(inv.Args, "-sdk"); sdkIdx > idx {
		t.Fatalf("-resource-dir must follow -sdk: %q", inv.Args)
	}
	tail := inv.Args[len(inv.Args)-4:]
	if !slices.Equal(tail, []string{"-Xcc", "-I", "-Xcc", "/SDK/usr/include"}) {
		t.Fatalf("search root = %q", tail)
	}
	if inv.Output != "out/Darwin.pcm" {
		t.Fatalf("output = %q", inv.Output)
	}
}

func TestAssembleResourceDirModule(t *testing.T) {
	tc := testToolchain()
	tc.ResourceDir = "/res"
	mod := sdk.UncompiledModule{
		Name:              "_Builtin_stddef",
		ModuleName:        "_Builtin_stddef",
		InputRelativePath: "$RESOURCEDIR/include/module.modulemap",
	}
	inv, err := Assemble(&Request{Module: mod, Toolchain: tc}, registry.New())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(inv.Args, "/res/include/module.modulemap") {
		t.Fatalf("module map not expanded against resource dir: %q", inv.Args)
	}
	if got := inv.Args[len(inv.Args)-1]; got != "/res/include" {
		t.Fatalf("search root = %q", got)
	}
}

func TestAssembleDependencyFlags(t *testing.T) {
	sets := depset.NewArena()
	dep, err := sets.Add(depset.Node{
		Label:  "CoreFoundation",
		Values: map[depset.Projection][]string{depset.ClangDeps: {"-Xcc", "-fmodule-file=CoreFoundation=CoreFoundation.pcm"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain(), Deps: dep, Sets: sets}, registry.New())
	if err != nil {
		t.Fatal(err)
	}
	depIdx := slices.Index(inv.Args, "-fmodule-file=CoreFoundation=CoreFoundation.pcm")
	outIdx := slices.Index(inv.Args, "-o")
	flagIdx := slices.Index(inv.Args, "-DNDEBUG")
	if depIdx < 0 || depIdx > outIdx || depIdx < flagIdx {
		t.Fatalf("dependency flags out of order: %q", inv.Args)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	first, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain()}, registry.New())
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain()}, registry.New())
		if err != nil {
			t.Fatal(err)
		}
		if again.String() != first.String() {
			t.Fatalf("non-deterministic invocation:\n%s\n%s", first, again)
		}
	}
}

func TestAssembleErrorsLeaveRegistryUntouched(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		check  func(error) bool
	}{
		{
			name: "resource dir missing",
			mutate: func(r *Request) {
				r.Module.InputRelativePath = "$RESOURCEDIR/include/module.modulemap"
				r.Module.IsFramework = false
			},
			check: func(err error) bool { return errors.Is(err, sdkpath.ErrNoResourceDir) },
		},
		{
			name:   "framework path too short",
			mutate: func(r *Request) { r.Module.InputRelativePath = "Modules/module.modulemap" },
			check: func(err error) bool {
				var se *sdkpath.StructuralPathError
				return errors.As(err, &se)
			},
		},
		{
			name:   "no compiler",
			mutate: func(r *Request) { r.Toolchain.Compiler = "" },
			check:  func(err error) bool { return errors.Is(err, errNoCompiler) },
		},
		{
			name:   "no module name",
			mutate: func(r *Request) { r.Module.ModuleName = "" },
			check:  func(err error) bool { return errors.Is(err, errNoModuleName) },
		},
		{
			name:   "deps without arena",
			mutate: func(r *Request) { r.Deps = depset.Ref(1) },
			check:  func(err error) bool { return err != nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			req := &Request{Module: foundation(), Toolchain: testToolchain()}
			tt.mutate(req)
			_, err := Assemble(req, reg)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if reg.Len() != 0 {
				t.Fatalf("registry written on error: %v", reg.Names())
			}
		})
	}
}

func TestAssembleCollision(t *testing.T) {
	reg := registry.New()
	if _, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain()}, reg); err != nil {
		t.Fatal(err)
	}
	_, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain(), OutputDir: "elsewhere"}, reg)
	if !errors.Is(err, registry.ErrCollision) {
		t.Fatalf("error = %v, want ErrCollision", err)
	}
	info, _ := reg.Get("Foundation")
	if info.Output != "Foundation.pcm" {
		t.Fatalf("first registration replaced: %q", info.Output)
	}
}

func TestAssembleNilRegistry(t *testing.T) {
	if _, err := Assemble(&Request{Module: foundation(), Toolchain: testToolchain()}, nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}
