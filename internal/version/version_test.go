package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in                  string
		major, minor, patch string
	}{
		{"0.1.0-dev", "0", "1", "0-dev"},
		{"1.2.3", "1", "2", "3"},
		{"1.0.0-beta.1", "1", "0", "0-beta.1"},
		{"2", "2", "", ""},
	}
	for _, tt := range tests {
		major, minor, patch := split(tt.in)
		if major != tt.major || minor != tt.minor || patch != tt.patch {
			t.Errorf("split(%q) = %q, %q, %q; want %q, %q, %q", tt.in, major, minor, patch, tt.major, tt.minor, tt.patch)
		}
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	origVersion := Version
	Version = "1.2.3"
	defer func() { Version = origVersion }()

	if got := Pretty(); got != "1.2.3" {
		t.Fatalf("Pretty() = %q, want %q", got, "1.2.3")
	}
}
