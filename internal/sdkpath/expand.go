// Package sdkpath turns SDK-relative module map paths into concrete paths and
// compiler search roots.
package sdkpath

import (
	"path"
	"strings"
)

const (
	// TokenSDKRoot prefixes paths relative to the SDK root.
	TokenSDKRoot = "$SDKROOT"
	// TokenResourceDir prefixes paths relative to the compiler resource directory.
	TokenResourceDir = "$RESOURCEDIR"
)

// splitToken separates a leading path token from the rest of rel.
// A token only matches when followed by '/' or the end of the string.
func splitToken(rel string) (token, rest string) {
	for _, tok := range [...]string{TokenResourceDir, TokenSDKRoot} {
		after, ok := strings.CutPrefix(rel, tok)
		if !ok {
			continue
		}
		if after == "" || after[0] == '/' {
			return tok, strings.TrimLeft(after, "/")
		}
	}
	return "", rel
}

// Expand resolves rel against the SDK root or, when it starts with
// $RESOURCEDIR, against resourceDir. An empty resourceDir means none is configured.
func Expand(sdkPath, resourceDir, rel string) (string, error) {
	token, rest := splitToken(rel)
	if strings.HasPrefix(rest, "$") {
		if token == "" {
			return "", &ConfigError{Path: rel, Err: ErrUnknownToken}
		}
		return "", &ConfigError{Path: rel, Err: ErrNestedToken}
	}
	root := sdkPath
	if token == TokenResourceDir {
		if resourceDir == "" {
			return "", &ConfigError{Path: rel, Err: ErrNoResourceDir}
		}
		root = resourceDir
	}
	if rest == "" {
		return root, nil
	}
	return path.Join(root, rest), nil
}
