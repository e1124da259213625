package pcm

import (
	"slices"
	"testing"
)

func TestSharedFlags(t *testing.T) {
	tc := testToolchain()
	tc.PCHValidationFlags = []string{"-Xcc", "-fno-validate-pch"}
	got := SharedFlags("Foundation", tc)
	want := []string{
		"-emit-pcm",
		"-target", "arm64-apple-ios17.0",
		"-module-name", "Foundation",
		"-Xfrontend", "-disable-implicit-swift-modules",
		"-Xcc", "-fno-implicit-modules",
		"-Xcc", "-fno-implicit-module-maps",
		"-Xcc", "-Xclang", "-Xcc", "-fmodule-format=raw",
		"-Xcc", "-Xclang", "-Xcc", "-fmodules-embed-all-files",
		"-Xcc", "-Xclang", "-Xcc", "-fmodule-file-home-is-cwd",
		"-Xcc", "-I.",
		"-Xcc", "-fno-validate-pch",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("SharedFlags\n got: %q\nwant: %q", got, want)
	}
}

func TestSharedFlagsWithoutTarget(t *testing.T) {
	tc := testToolchain()
	tc.Target = ""
	if got := SharedFlags("X", tc); slices.Contains(got, "-target") {
		t.Fatalf("unexpected -target: %q", got)
	}
}

func TestPartialCommandAppendsExtra(t *testing.T) {
	got := PartialCommand("X", testToolchain(), []string{"-Xcc", "-DFOO"})
	if !slices.Equal(got[len(got)-2:], []string{"-Xcc", "-DFOO"}) {
		t.Fatalf("extra flags not last: %q", got)
	}
}

func TestSystemModuleFlagsCopy(t *testing.T) {
	flags := SystemModuleFlags()
	flags[0] = "mutated"
	if SystemModuleFlags()[0] != "-Xcc" {
		t.Fatalf("SystemModuleFlags returned shared storage")
	}
}
