package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"astc/config"
	"astc/emit"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	opts, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, emit.DefaultOptions(), opts)
}

func TestLoadParsesYAMLFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astc.yaml")
	content := `
optimize_level: 2
enable_warnings: true
warnings_as_errors: true
c_standard: C11
include_dirs:
  - /usr/include
macro_defines:
  - name: DEBUG
    value: "1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, opts.OptimizeLevel)
	require.True(t, opts.WarningsAsErrors)
	require.Equal(t, emit.C11, opts.CStandard)
	require.Equal(t, []string{"/usr/include"}, opts.IncludeDirs)
	require.Equal(t, []emit.MacroDefine{{Name: "DEBUG", Value: "1"}}, opts.MacroDefines)
}
