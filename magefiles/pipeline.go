package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// Rebuild compiles the CLI and rebuilds the snapshot from the note collection.
func Rebuild() error {
	mg.Deps(Build)
	return runBin("build")
}

// Export compiles the CLI and mirrors the existing snapshot to Neo4j.
func Export() error {
	mg.Deps(Build)
	return runBin("export")
}

// Sync compiles the CLI and runs the full build-and-mirror pipeline.
func Sync() error {
	mg.Deps(Build)
	return runBin("sync")
}

// runBin executes the built binary with the caller's environment attached.
func runBin(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	return cmd.Run()
}
