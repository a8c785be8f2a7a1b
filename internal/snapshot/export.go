// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the full graph dump to a .yaml file beside the snapshot
// and returns the path written.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	dump, err := s.Dump(ctx)
	if err != nil {
		return "", fmt.Errorf("dumping snapshot: %w", err)
	}

	path := s.dumpPath(".yaml")
	data, err := yaml.Marshal(dump)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportJSON writes the full graph dump to a .json file beside the snapshot
// and returns the path written.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	dump, err := s.Dump(ctx)
	if err != nil {
		return "", fmt.Errorf("dumping snapshot: %w", err)
	}

	path := s.dumpPath(".json")
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) dumpPath(ext string) string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ext
}
