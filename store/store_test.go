package store_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"astc/emit"
	"astc/store"
)

func TestWriteThenReadContainerRoundTrips(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := emit.Container{
		Version: 1,
		Instructions: emit.Instructions{
			byte(emit.CONST_I32), 7, 0, 0, 0,
			byte(emit.HALT),
		},
	}

	require.NoError(t, store.WriteContainer(fs, "out.astc", c))

	got, err := store.ReadContainer(fs, "out.astc")
	require.NoError(t, err)
	require.Equal(t, c.Instructions, got.Instructions)
	require.Equal(t, c.Version, got.Version)
}

func TestReadContainerMissingFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := store.ReadContainer(fs, "missing.astc")
	require.Error(t, err)
}
