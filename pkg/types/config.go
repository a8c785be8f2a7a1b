package types

import (
	"fmt"
	"strings"
)

// Environment variable names for the required settings. The CLI reads them
// through viper (prefix ROAM_GRAPH); validation errors report these names.
const (
	EnvNotesDir      = "ROAM_GRAPH_NOTES_DIR"
	EnvDBPath        = "ROAM_GRAPH_DB_PATH"
	EnvNeo4jURI      = "ROAM_GRAPH_NEO4J_URI"
	EnvNeo4jUser     = "ROAM_GRAPH_NEO4J_USER"
	EnvNeo4jPassword = "ROAM_GRAPH_NEO4J_PASSWORD"
)

// BuildConfig holds settings for the snapshot build phase.
type BuildConfig struct {
	// NotesDir is the root directory scanned recursively for .org note files.
	NotesDir string `json:"notes_dir" yaml:"notes_dir"`

	// DBPath is the location of the SQLite snapshot file. The build phase
	// removes and recreates it on every run.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// Validate reports every missing required build setting in one error.
func (c BuildConfig) Validate() error {
	var missing []string
	if c.NotesDir == "" {
		missing = append(missing, EnvNotesDir)
	}
	if c.DBPath == "" {
		missing = append(missing, EnvDBPath)
	}
	return missingError(missing)
}

// MirrorConfig holds connection settings for the remote graph store.
// None of the fields have defaults; all are required for the export phase.
type MirrorConfig struct {
	// URI is the bolt/neo4j connection URI (e.g. "bolt://localhost:7687").
	URI string `json:"uri" yaml:"uri"`

	// Username authenticates against the remote store.
	Username string `json:"username" yaml:"username"`

	// Password authenticates against the remote store.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Validate reports every missing required mirror setting in one error.
func (c MirrorConfig) Validate() error {
	var missing []string
	if c.URI == "" {
		missing = append(missing, EnvNeo4jURI)
	}
	if c.Username == "" {
		missing = append(missing, EnvNeo4jUser)
	}
	if c.Password == "" {
		missing = append(missing, EnvNeo4jPassword)
	}
	return missingError(missing)
}

// PipelineConfig groups the stage configurations for a full sync run.
type PipelineConfig struct {
	Build  BuildConfig  `json:"build" yaml:"build"`
	Mirror MirrorConfig `json:"mirror" yaml:"mirror"`
}

// Validate reports every missing required setting across both stages.
func (c PipelineConfig) Validate() error {
	var missing []string
	if c.Build.NotesDir == "" {
		missing = append(missing, EnvNotesDir)
	}
	if c.Build.DBPath == "" {
		missing = append(missing, EnvDBPath)
	}
	if c.Mirror.URI == "" {
		missing = append(missing, EnvNeo4jURI)
	}
	if c.Mirror.Username == "" {
		missing = append(missing, EnvNeo4jUser)
	}
	if c.Mirror.Password == "" {
		missing = append(missing, EnvNeo4jPassword)
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
}
