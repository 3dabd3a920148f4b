//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "gemtrans"

// Default target to run when none is specified
var Default = Build

// Build compiles the gemtrans binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/gemtrans")
}

// Install installs gemtrans into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/gemtrans")
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the unit tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Integration runs the tests that talk to the real services. It needs
// GEMINI_API_KEY and, for the PostgreSQL store, GEMTRANS_TEST_POSTGRES_DSN.
func Integration() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	return sh.RunV("go", "test", "-count=1", "./...")
}

// Lint runs go vet
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// All lints, tests and builds
func All() {
	mg.SerialDeps(Lint, Test, Build)
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
