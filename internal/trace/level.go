package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level keeps every scope up to its
// own granularity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // crash dumps only
	LevelPhase        // driver + pass boundaries
	LevelDetail       // per module
	LevelDebug        // per compiler process
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest scope kept at each level; zero keeps nothing
var levelMaxScope = [...]Scope{0, 0, ScopePass, ScopeModule, ScopeCommand}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level. The empty string means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are kept at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelMaxScope) {
		return false
	}
	return scope != 0 && scope <= levelMaxScope[l]
}
