// Package sdk holds the data model shared by the SDK module compile path.
package sdk

import (
	"fmt"
	"strings"

	"github.com/frioux/shellquote"

	"sdkpcm/internal/depset"
)

// PCMExt is the extension of a precompiled module artifact.
const PCMExt = ".pcm"

// UncompiledModule describes an SDK module that still has to be compiled.
// Values are produced by upstream module resolution and never mutated.
type UncompiledModule struct {
	Name              string
	ModuleName        string // compiler-visible module name
	IsFramework       bool
	InputRelativePath string   // module map path relative to the SDK, optionally $SDKROOT/$RESOURCEDIR prefixed
	PartialCmd        []string // module-specific flags, emitted right after the compiler
	Deps              []string // module names of direct SDK dependencies
}

// Toolchain is the compiler configuration for one build configuration.
type Toolchain struct {
	Compiler           string
	SDKPath            string
	ResourceDir        string // empty when the toolchain has none
	CompilerFlags      []string
	Target             string
	PCHValidationFlags []string
}

// HasResourceDir reports whether a compiler resource directory is configured.
func (t Toolchain) HasResourceDir() bool {
	return t.ResourceDir != ""
}

// CompiledModule is the registry record of a successfully planned compile.
type CompiledModule struct {
	Name              string
	ModuleName        string
	IsFramework       bool
	Output            string // declared .pcm artifact
	IsSwiftModule     bool   // always false for SDK clang modules
	Deps              depset.Ref
	InputRelativePath string // expanded module map path
}

// OutputName returns the artifact file name for a module.
func OutputName(moduleName string) string {
	return moduleName + PCMExt
}

// Invocation is one fully ordered compiler command line.
type Invocation struct {
	ModuleName string
	Executable string
	Args       []string
	Output     string
}

// Argv returns the executable followed by its arguments.
func (inv Invocation) Argv() []string {
	argv := make([]string, 0, len(inv.Args)+1)
	argv = append(argv, inv.Executable)
	return append(argv, inv.Args...)
}

// Command renders the invocation as a single shell command line.
func (inv Invocation) Command() (string, error) {
	cmd, err := shellquote.Quote(inv.Argv())
	if err != nil {
		return "", fmt.Errorf("quote %s invocation: %w", inv.ModuleName, err)
	}
	return cmd, nil
}

// String is Command for display; arguments that cannot be quoted are
// joined unquoted.
func (inv Invocation) String() string {
	cmd, err := inv.Command()
	if err != nil {
		return strings.Join(inv.Argv(), " ")
	}
	return cmd
}
