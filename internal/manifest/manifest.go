// Package manifest loads sdkpcm.toml, the description of a toolchain and the
// SDK modules to precompile with it.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"sdkpcm/internal/sdk"
)

// FileName is the manifest file looked up by Find.
const FileName = "sdkpcm.toml"

// DefaultOutputDir is used when [output].dir is not set.
const DefaultOutputDir = "pcm"

var (
	// ErrToolchainSectionMissing indicates that [toolchain] is missing.
	ErrToolchainSectionMissing = errors.New("missing [toolchain]")
	// ErrCompilerMissing indicates that [toolchain].compiler is missing.
	ErrCompilerMissing = errors.New("missing [toolchain].compiler")
	// ErrSDKMissing indicates that [toolchain].sdk is missing.
	ErrSDKMissing = errors.New("missing [toolchain].sdk")
	// ErrDuplicateModule indicates two [[module]] entries with the same module name.
	ErrDuplicateModule = errors.New("duplicate module")
)

// Manifest is a loaded and validated sdkpcm.toml.
type Manifest struct {
	Path      string
	Root      string
	Toolchain sdk.Toolchain
	OutputDir string // absolute, or relative to Root where compilers run
	Modules   []sdk.UncompiledModule
}

type fileConfig struct {
	Toolchain toolchainConfig `toml:"toolchain"`
	Output    outputConfig    `toml:"output"`
	Modules   []moduleConfig  `toml:"module"`
}

type toolchainConfig struct {
	Compiler           string `toml:"compiler"`
	SDK                string `toml:"sdk"`
	ResourceDir        string `toml:"resource_dir"`
	Target             string `toml:"target"`
	Flags              Flags  `toml:"flags"`
	PCHValidationFlags Flags  `toml:"pch_validation_flags"`
}

type outputConfig struct {
	Dir string `toml:"dir"`
}

type moduleConfig struct {
	Name       string   `toml:"name"`
	ModuleName string   `toml:"module_name"`
	Framework  bool     `toml:"framework"`
	ModuleMap  string   `toml:"modulemap"`
	Flags      Flags    `toml:"flags"`
	Deps       []string `toml:"deps"`
}

// Find walks up from startDir to locate sdkpcm.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("toolchain") {
		return nil, fmt.Errorf("%s: %w", path, ErrToolchainSectionMissing)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := &Manifest{
		Path: abs,
		Root: filepath.Dir(abs),
	}
	if m.Toolchain, err = cfg.Toolchain.toToolchain(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.OutputDir = strings.TrimSpace(cfg.Output.Dir)
	if m.OutputDir == "" {
		m.OutputDir = DefaultOutputDir
	}
	// A relative dir stays relative so -o paths do not depend on the checkout.
	m.OutputDir = filepath.Clean(m.OutputDir)

	seen := make(map[string]int, len(cfg.Modules))
	for i, mc := range cfg.Modules {
		mod, err := mc.toModule()
		if err != nil {
			return nil, fmt.Errorf("%s: [[module]] #%d: %w", path, i+1, err)
		}
		if prev, dup := seen[mod.ModuleName]; dup {
			return nil, fmt.Errorf("%s: [[module]] #%d: %w %q (first declared in #%d)", path, i+1, ErrDuplicateModule, mod.ModuleName, prev+1)
		}
		seen[mod.ModuleName] = i
		m.Modules = append(m.Modules, mod)
	}
	return m, nil
}

// LoadFromDir finds the manifest above dir and loads it.
func LoadFromDir(dir string) (*Manifest, bool, error) {
	path, ok, err := Find(dir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func (c toolchainConfig) toToolchain() (sdk.Toolchain, error) {
	compiler := strings.TrimSpace(c.Compiler)
	if compiler == "" {
		return sdk.Toolchain{}, ErrCompilerMissing
	}
	sdkPath := strings.TrimSpace(c.SDK)
	if sdkPath == "" {
		return sdk.Toolchain{}, ErrSDKMissing
	}
	return sdk.Toolchain{
		Compiler:           compiler,
		SDKPath:            sdkPath,
		ResourceDir:        strings.TrimSpace(c.ResourceDir),
		CompilerFlags:      []string(c.Flags),
		Target:             strings.TrimSpace(c.Target),
		PCHValidationFlags: []string(c.PCHValidationFlags),
	}, nil
}

func (c moduleConfig) toModule() (sdk.UncompiledModule, error) {
	name := normalizeName(c.Name)
	if name == "" {
		return sdk.UncompiledModule{}, fmt.Errorf("missing name")
	}
	moduleName := normalizeName(c.ModuleName)
	if moduleName == "" {
		moduleName = name
	}
	modulemap := strings.TrimSpace(c.ModuleMap)
	if modulemap == "" {
		return sdk.UncompiledModule{}, fmt.Errorf("module %q: missing modulemap", name)
	}
	deps := make([]string, 0, len(c.Deps))
	for _, d := range c.Deps {
		d = normalizeName(d)
		if d == "" {
			return sdk.UncompiledModule{}, fmt.Errorf("module %q: empty dependency name", name)
		}
		if d == moduleName {
			return sdk.UncompiledModule{}, fmt.Errorf("module %q depends on itself", name)
		}
		deps = append(deps, d)
	}
	return sdk.UncompiledModule{
		Name:              name,
		ModuleName:        moduleName,
		IsFramework:       c.Framework,
		InputRelativePath: modulemap,
		PartialCmd:        []string(c.Flags),
		Deps:              deps,
	}, nil
}

// normalizeName trims a module name and puts it in NFC so that names typed
// with different Unicode compositions refer to the same module.
func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
