package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/followgraph/pkg/digraph"
	"github.com/matzehuels/followgraph/pkg/errors"
	"github.com/matzehuels/followgraph/pkg/graph"
	"github.com/matzehuels/followgraph/pkg/observability"
	"github.com/matzehuels/followgraph/pkg/rngstate"
)

const (
	graphExt = ".json.gz"
	stateExt = ".rng"
)

// FileStore keeps graphs and states as files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

// GraphPath returns the file that holds the graph called name.
func (s *FileStore) GraphPath(name string) string {
	return filepath.Join(s.dir, name+graphExt)
}

// StatePath returns the file that holds the state called name.
func (s *FileStore) StatePath(name string) string {
	return filepath.Join(s.dir, name+stateExt)
}

// SaveGraph writes g as gzip-compressed node-link JSON.
func (s *FileStore) SaveGraph(ctx context.Context, name string, g *digraph.Graph) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := graph.Write(g, zw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress graph: %w", err)
	}

	if err := writeAtomic(s.GraphPath(name), buf.Bytes()); err != nil {
		return err
	}
	observability.Storage().OnSave(ctx, KindGraph, name, buf.Len())
	return nil
}

// LoadGraph reads the graph called name.
func (s *FileStore) LoadGraph(ctx context.Context, name string) (*digraph.Graph, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(s.GraphPath(name))
	if os.IsNotExist(err) {
		observability.Storage().OnLoad(ctx, KindGraph, name, false)
		return nil, fmt.Errorf("graph %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("graph %q: decompress: %w", name, err)
	}
	defer zr.Close()

	g, err := graph.Read(zr)
	if err != nil {
		return nil, fmt.Errorf("graph %q: %w", name, err)
	}
	observability.Storage().OnLoad(ctx, KindGraph, name, true)
	return g, nil
}

// SaveState writes the binary encoding of st.
func (s *FileStore) SaveState(ctx context.Context, name string, st *rngstate.State) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	data, err := st.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := writeAtomic(s.StatePath(name), data); err != nil {
		return err
	}
	observability.Storage().OnSave(ctx, KindState, name, len(data))
	return nil
}

// LoadState reads the state called name.
func (s *FileStore) LoadState(ctx context.Context, name string) (*rngstate.State, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.StatePath(name))
	if os.IsNotExist(err) {
		observability.Storage().OnLoad(ctx, KindState, name, false)
		return nil, fmt.Errorf("state %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	st, err := rngstate.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("state %q: %w", name, err)
	}
	observability.Storage().OnLoad(ctx, KindState, name, true)
	return st, nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error { return nil }

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
