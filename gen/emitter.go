// File: gen/emitter.go
// Package gen implements concurrent file emission.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Emitter writes generated files under OutDir, creating directories as
// needed. Files are written concurrently with bounded workers; the first
// failure aborts the batch result.
type Emitter struct {
	OutDir  string
	Workers int // 0 means GOMAXPROCS
}

// Emit writes every file and returns the paths written.
func (e *Emitter) Emit(files []File) ([]string, error) {
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("gen: create output dir: %w", err)
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	paths := make([]string, len(files))
	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i, f := range files {
		p.Go(func() error {
			path := filepath.Join(e.OutDir, f.Path)
			if err := os.WriteFile(path, f.Content, 0o644); err != nil {
				return fmt.Errorf("gen: write %s: %w", f.Path, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// Run parses a schema, renders it with the backend, and emits the result.
func Run(schema []byte, b Backend, e *Emitter) ([]string, error) {
	s, err := ParseSchema(schema)
	if err != nil {
		return nil, err
	}
	files, err := b.Generate(s)
	if err != nil {
		return nil, err
	}
	return e.Emit(files)
}
