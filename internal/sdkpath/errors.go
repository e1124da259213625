package sdkpath

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResourceDir indicates a $RESOURCEDIR path without a configured resource directory.
	ErrNoResourceDir = errors.New("no compiler resource directory configured")
	// ErrUnknownToken indicates a path starting with an unrecognized $TOKEN.
	ErrUnknownToken = errors.New("unknown path token")
	// ErrNestedToken indicates a path token followed by another path token.
	ErrNestedToken = errors.New("nested path token")
	// ErrFrameworkLayout indicates a framework module map outside Name.framework/Modules/.
	ErrFrameworkLayout = errors.New("unsupported framework layout")
)

// ConfigError reports a path that cannot be expanded with the given toolchain.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("cannot expand %q: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StructuralPathError reports a module map path too short for its framework rule.
type StructuralPathError struct {
	Path        string
	IsFramework bool
	Have        int
	Want        int
	Err         error // set for layout mismatches
}

func (e *StructuralPathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	kind := "module"
	if e.IsFramework {
		kind = "framework module"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s map path %q: %v", kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s map path %q has %d path components, need at least %d", kind, e.Path, e.Have, e.Want)
}

func (e *StructuralPathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
