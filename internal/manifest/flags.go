package manifest

import (
	"fmt"

	"github.com/google/shlex"
)

// Flags is a compiler flag list written either as a TOML array of strings or
// as a single shell-quoted string.
type Flags []string

// UnmarshalTOML implements toml.Unmarshaler.
func (f *Flags) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		parts, err := shlex.Split(val)
		if err != nil {
			return fmt.Errorf("flags %q: %w", val, err)
		}
		*f = parts
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("flags[%d]: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		*f = out
	default:
		return fmt.Errorf("flags: expected string or array of strings, got %T", v)
	}
	return nil
}
