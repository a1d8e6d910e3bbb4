package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirSink writes delivered files into a directory, creating it on demand.
type dirSink struct {
	dir string
}

func (s *dirSink) Deliver(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}
