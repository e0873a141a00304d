// Package codec reads and writes PMI snapshots as msgpack files.
package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
	"github.com/cognicore/ppmi/pkg/ppmi/store"
)

const (
	magic   = "ppmi"
	version = 1
)

type envelope struct {
	Magic    string         `msgpack:"magic"`
	Version  int            `msgpack:"version"`
	Snapshot store.Snapshot `msgpack:"snapshot"`
}

// Encode writes snap to w
func Encode(w io.Writer, snap store.Snapshot) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(envelope{Magic: magic, Version: version, Snapshot: snap})
}

// Decode reads a snapshot written by Encode
func Decode(r io.Reader) (store.Snapshot, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return store.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Magic != magic {
		return store.Snapshot{}, fmt.Errorf("not a snapshot file: %w", internalerr.ErrInvalidInput)
	}
	if env.Version != version {
		return store.Snapshot{}, fmt.Errorf("unsupported snapshot version %d: %w", env.Version, internalerr.ErrInvalidInput)
	}
	if err := env.Snapshot.Validate(); err != nil {
		return store.Snapshot{}, err
	}
	return env.Snapshot, nil
}

// WriteFile encodes snap into path
func WriteFile(path string, snap store.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes the snapshot stored at path
func ReadFile(path string) (store.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
