package sdkpath

import (
	"errors"
	"testing"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name        string
		sdk         string
		resourceDir string
		rel         string
		want        string
	}{
		{"unprefixed", "/SDK", "", "usr/include", "/SDK/usr/include"},
		{"sdkroot token", "/SDK", "", "$SDKROOT/usr/include", "/SDK/usr/include"},
		{"sdkroot alone", "/SDK", "", "$SDKROOT", "/SDK"},
		{"resource dir", "/SDK", "/toolchain/lib/swift", "$RESOURCEDIR/shims/module.modulemap", "/toolchain/lib/swift/shims/module.modulemap"},
		{"resource dir alone", "/SDK", "/res", "$RESOURCEDIR", "/res"},
		{"empty means sdk root", "/SDK", "", "", "/SDK"},
		{"cleans duplicate slashes", "/SDK/", "", "$SDKROOT//usr//lib", "/SDK/usr/lib"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.sdk, tt.resourceDir, tt.rel)
			if err != nil {
				t.Fatalf("Expand(%q, %q, %q) error: %v", tt.sdk, tt.resourceDir, tt.rel, err)
			}
			if got != tt.want {
				t.Fatalf("Expand(%q, %q, %q) = %q, want %q", tt.sdk, tt.resourceDir, tt.rel, got, tt.want)
			}
		})
	}
}

func TestExpandResourceDirWithoutConfig(t *testing.T) {
	_, err := Expand("/SDK", "", "$RESOURCEDIR/shims/module.modulemap")
	if err == nil {
		t.Fatal("expected error")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %T, want *ConfigError", err)
	}
	if !errors.Is(err, ErrNoResourceDir) {
		t.Fatalf("error = %v, want ErrNoResourceDir", err)
	}
	if cfgErr.Path != "$RESOURCEDIR/shims/module.modulemap" {
		t.Fatalf("Path = %q", cfgErr.Path)
	}
}

func TestExpandUnknownToken(t *testing.T) {
	// a token only matches when followed by a separator
	_, err := Expand("/SDK", "", "$SDKROOTS/x")
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("error = %v, want ErrUnknownToken", err)
	}
}

func TestExpandNestedToken(t *testing.T) {
	_, err := Expand("/SDK", "/res", "$SDKROOT/$RESOURCEDIR/x")
	if !errors.Is(err, ErrNestedToken) {
		t.Fatalf("error = %v, want ErrNestedToken", err)
	}
}
