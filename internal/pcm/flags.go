// Package pcm assembles compiler invocations that turn SDK module maps into
// precompiled clang modules (.pcm).
package pcm

import (
	"slices"

	"sdkpcm/internal/sdk"
)

// xclang passes flag through the driver's -Xcc to clang's -cc1 frontend.
func xclang(flag string) []string {
	return []string{"-Xcc", "-Xclang", "-Xcc", flag}
}

// SharedFlags returns the flags every SDK module compile starts with,
// independent of which module is being built beyond its name.
func SharedFlags(moduleName string, tc sdk.Toolchain) []string {
	flags := []string{"-emit-pcm"}
	if tc.Target != "" {
		flags = append(flags, "-target", tc.Target)
	}
	flags = append(flags,
		"-module-name", moduleName,
		"-Xfrontend", "-disable-implicit-swift-modules",
		"-Xcc", "-fno-implicit-modules",
		"-Xcc", "-fno-implicit-module-maps",
	)
	// No debug info in the pcm: it embeds absolute paths and makes
	// artifact sizes depend on the build machine.
	flags = append(flags, xclang("-fmodule-format=raw")...)
	// Remote workers get the pcm without the module map and headers.
	flags = append(flags, xclang("-fmodules-embed-all-files")...)
	flags = append(flags, xclang("-fmodule-file-home-is-cwd")...)
	// Sandboxed compiles start in an empty directory; -I. brings the
	// compiler builtin headers (float.h and friends) back.
	flags = append(flags, "-Xcc", "-I.")
	return append(flags, tc.PCHValidationFlags...)
}

// PartialCommand builds the module-specific part of the invocation: the
// shared flags followed by any extra flags configured for the module.
func PartialCommand(moduleName string, tc sdk.Toolchain, extra []string) []string {
	return append(SharedFlags(moduleName, tc), extra...)
}

// systemModuleFlags ask clang to emit the module with system module semantics.
var systemModuleFlags = slices.Concat(xclang("-emit-module"), xclang("-fsystem-module"))

// SystemModuleFlags returns a copy of the fixed system-module emission flags.
func SystemModuleFlags() []string {
	return slices.Clone(systemModuleFlags)
}
