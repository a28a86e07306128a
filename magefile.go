//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - run the tests
var Default = Test

// Build builds the server, simulate and dbtool binaries into bin/
func Build() error {
	for _, cmd := range []string{"server", "simulate", "dbtool"} {
		if err := sh.RunV("go", "build", "-o", "bin/"+cmd, "./cmd/"+cmd); err != nil {
			return fmt.Errorf("build %s: %w", cmd, err)
		}
	}
	return nil
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// QA runs vet, then the tests
func QA() {
	mg.SerialDeps(Vet, Test)
}

// Simulate plans data/input.csv and writes data/output.csv
func Simulate() error {
	mg.Deps(Build)
	return sh.RunV("bin/simulate", "-input", "data/input.csv", "-output", "data/output.csv", "-decisions", "data/decisions.log")
}

// Clean removes build artifacts
func Clean() error {
	for _, p := range []string{"bin", "data/output.csv", "data/decisions.log"} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return nil
}
