// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/codedocx/internal/filelock"
	"github.com/pdiddy/codedocx/pkg/types"
)

// Manifest is the YAML sidecar describing a saved document.
type Manifest struct {
	GeneratedAt time.Time             `yaml:"generated_at"`
	Document    string                `yaml:"document,omitempty"`
	Entries     []types.DocumentEntry `yaml:"entries"`
	Summary     *types.RunSummary     `yaml:"summary,omitempty"`
}

// Manifest returns a manifest for the current entries. summary may be nil
// when the entries were not produced by a batch run.
func (b *Builder) Manifest(docPath string, summary *types.RunSummary) Manifest {
	return Manifest{
		GeneratedAt: time.Now().UTC(),
		Document:    docPath,
		Entries:     b.Entries(),
		Summary:     summary,
	}
}

// SaveManifest writes m as YAML to path atomically.
func SaveManifest(path string, m Manifest) error {
	err := filelock.LockAndWrite(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("marshaling manifest: %w", err)
		}
		return enc.Close()
	})
	if err != nil {
		return fmt.Errorf("saving manifest %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads a manifest previously written by SaveManifest.
func LoadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}
