// Package projectfile reads and writes projects as YAML documents.
package projectfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/immocalc/internal/model"
)

// FileName is the project file written by `immocalc init`.
const FileName = "project.yaml"

// Decode reads one project from r. Unknown keys are rejected so that typos
// do not silently fall back to defaults.
func Decode(r io.Reader) (model.Project, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p model.Project
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Project{}, fmt.Errorf("parsing project: empty document")
		}
		return model.Project{}, fmt.Errorf("parsing project: %w", err)
	}
	return p, nil
}

// Encode writes p to w.
func Encode(w io.Writer, p model.Project) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	return enc.Close()
}

// Load reads a project file from disk. The project is not validated.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("reading project: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return model.Project{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path.
func Save(path string, p model.Project) error {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing project: %w", err)
	}
	return nil
}
