// Package store persists ASTC bytecode containers through an afero.Fs,
// so `astc compile` can write a real `.astc` file while tests exercise
// the identical path against an in-memory filesystem (spec.md §4.4
// "container emission", §6 "bytecode container format").
package store

import (
	"github.com/spf13/afero"

	"astc/emit"
)

// WriteContainer encodes c and writes it to path on fs.
func WriteContainer(fs afero.Fs, path string, c emit.Container) error {
	return afero.WriteFile(fs, path, c.Encode(), 0o644)
}

// ReadContainer reads path from fs and decodes it as a bytecode
// container.
func ReadContainer(fs afero.Fs, path string) (emit.Container, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return emit.Container{}, err
	}
	return emit.Decode(data)
}
