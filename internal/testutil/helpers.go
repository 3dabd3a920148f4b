package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CreateBatchFile writes lines to a batch file in a temporary directory and
// returns its path
func CreateBatchFile(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "batch.txt")
	CreateTestFile(t, path, []byte(strings.Join(lines, "\n")))
	return path
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// IsolateConfig points HOME and XDG_DATA_HOME at temporary directories so
// tests never touch the user's real config or credentials
func IsolateConfig(t *testing.T) (home string) {
	t.Helper()

	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	return home
}

// CaptureOutput captures stdout/stderr during test execution
func CaptureOutput(t *testing.T, f func()) (stdout, stderr string) {
	t.Helper()

	// Save current stdout/stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	// Create pipes
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()

	// Redirect stdout/stderr
	os.Stdout = wOut
	os.Stderr = wErr

	outC := make(chan string)
	errC := make(chan string)
	go func() {
		var b strings.Builder
		buf := make([]byte, 1024)
		for {
			n, err := rOut.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				break
			}
		}
		outC <- b.String()
	}()
	go func() {
		var b strings.Builder
		buf := make([]byte, 1024)
		for {
			n, err := rErr.Read(buf)
			b.Write(buf[:n])
			if err != nil {
				break
			}
		}
		errC <- b.String()
	}()

	// Run function
	f()

	// Close writers
	wOut.Close()
	wErr.Close()

	stdout, stderr = <-outC, <-errC

	// Restore stdout/stderr
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	return stdout, stderr
}
