//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts every downloaded meeting.
func Convert() error {
	mg.Deps(Init, Build)
	fmt.Println("[convert] Converting meeting PDFs under data/meetings/downloaded.")
	return sh.RunV("bin/"+binName, "convert")
}

// Export writes the recorded attendance to attendance.yaml.
func Export() error {
	mg.Deps(Build)
	return sh.RunV("bin/"+binName, "export", "--format", "yaml", "--out", "attendance.yaml")
}
