//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract finds attribute clauses in contracts/ and templates/.
func Extract() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "extract")
}

// Classify labels every extracted clause and records the run.
func Classify() error {
	mg.Deps(Extract)
	return sh.RunV(binPath, "classify", "--formats", "json,yaml", "--metrics-file", "output/clause_classifier.prom")
}

// Report prints the most recent run.
func Report() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "report")
}

// Pipeline runs extraction and classification end to end.
func Pipeline() {
	mg.SerialDeps(Extract, Classify)
}
