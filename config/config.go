// Package config loads the driver's Options record (spec.md §6) from
// command-line flags and an optional YAML file, so `astc compile` and
// `astc run` can pin `c_standard`, `optimize_level`, `include_dirs`, and
// `macro_defines` in one place instead of repeating flags on every
// invocation.
package config

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"

	"astc/emit"
)

// FileConfig is the on-disk shape of astc.yaml. Field names follow the
// driver surface's options record (spec.md §6) rather than Go
// convention, since this is the user-facing config file format.
type FileConfig struct {
	OptimizeLevel    int      `yaml:"optimize_level"`
	EmitDebugInfo    bool     `yaml:"emit_debug_info"`
	EnableWarnings   bool     `yaml:"enable_warnings"`
	WarningsAsErrors bool     `yaml:"warnings_as_errors"`
	PreprocessOnly   bool     `yaml:"preprocess_only"`
	CStandard        string   `yaml:"c_standard"`
	IncludeDirs      []string `yaml:"include_dirs"`
	MacroDefines     []struct {
		Name  string `yaml:"name"`
		Value string `yaml:"value"`
	} `yaml:"macro_defines"`
}

// Load reads path (if it exists) and merges it onto emit.DefaultOptions.
// A missing file is not an error: the defaults stand.
func Load(path string) (emit.Options, error) {
	opts := emit.DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, err
	}

	// Pre-fill with the defaults so keys absent from the file keep them.
	fc := FileConfig{
		OptimizeLevel:    opts.OptimizeLevel,
		EmitDebugInfo:    opts.EmitDebugInfo,
		EnableWarnings:   opts.EnableWarnings,
		WarningsAsErrors: opts.WarningsAsErrors,
		PreprocessOnly:   opts.PreprocessOnly,
		CStandard:        opts.CStandard.String(),
		IncludeDirs:      opts.IncludeDirs,
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return opts, err
	}
	return merge(opts, fc), nil
}

func merge(opts emit.Options, fc FileConfig) emit.Options {
	opts.OptimizeLevel = fc.OptimizeLevel
	opts.EmitDebugInfo = fc.EmitDebugInfo
	opts.EnableWarnings = fc.EnableWarnings
	opts.WarningsAsErrors = fc.WarningsAsErrors
	opts.PreprocessOnly = fc.PreprocessOnly
	opts.CStandard = parseCStandard(fc.CStandard)
	opts.IncludeDirs = fc.IncludeDirs
	for _, md := range fc.MacroDefines {
		opts.MacroDefines = append(opts.MacroDefines, emit.MacroDefine{Name: md.Name, Value: md.Value})
	}
	return opts
}

func parseCStandard(s string) emit.CStandard {
	switch s {
	case "C89":
		return emit.C89
	case "C11":
		return emit.C11
	default:
		return emit.C99
	}
}

// BindFlags registers command-line flags that override whatever Load
// produced, matching the driver surface's recognized option fields
// (spec.md §6).
func BindFlags(fs *flag.FlagSet, opts *emit.Options) {
	fs.IntVar(&opts.OptimizeLevel, "O", opts.OptimizeLevel, "optimization level (0-3)")
	fs.BoolVar(&opts.EmitDebugInfo, "g", opts.EmitDebugInfo, "emit debug info")
	fs.BoolVar(&opts.EnableWarnings, "Wall", opts.EnableWarnings, "enable warnings")
	fs.BoolVar(&opts.WarningsAsErrors, "Werror", opts.WarningsAsErrors, "treat warnings as errors")
	fs.BoolVar(&opts.PreprocessOnly, "E", opts.PreprocessOnly, "preprocess only")
}
