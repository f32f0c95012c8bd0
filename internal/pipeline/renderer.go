package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Renderer writes JSON documents
type Renderer struct {
	compact bool
}

// NewRenderer creates a renderer; compact output is a single line
func NewRenderer(compact bool) *Renderer {
	return &Renderer{compact: compact}
}

// Render encodes v to w followed by a newline
func (r *Renderer) Render(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if !r.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// RenderFile writes v to path, creating parent directories
func (r *Renderer) RenderFile(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := r.Render(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
