// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the roam-graph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/roam-graph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, the loaded secret for key
// otherwise. Explicit configuration always wins over secret files.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the roam-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "roam-graph",
	Short: "Build a knowledge graph from org-roam notes and mirror it to Neo4j",
	Long: `roam-graph scans a directory tree of org-mode notes, extracts nodes, typed
links, and tags into a SQLite snapshot, and mirrors the snapshot into a Neo4j
database for graph queries.

Configuration comes from ROAM_GRAPH_* environment variables (or an optional
roam-graph.yaml file): notes_dir, db_path, neo4j_uri, neo4j_user,
neo4j_password. The Neo4j settings may also live in .secrets/ files;
explicit environment values win.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./roam-graph.yaml or ~/.config/roam-graph/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("roam-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "roam-graph"))
		}
	}

	viper.SetEnvPrefix("ROAM_GRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
