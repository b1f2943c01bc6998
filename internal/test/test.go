package test

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temporary directory for testing and returns its path.
// The directory is automatically cleaned up after the test.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "consumergraph-test-*")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir) // Ignore cleanup errors in tests
	})
	return dir
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the file's path. The extension of name selects the config format.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(TempDir(t), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// FreeAddr returns a loopback address that was free when checked
func FreeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// AssertFileExists checks if a file exists and fails the test if it doesn't.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "file should exist: %s", path)
}

// AssertFileNotExists checks if a file doesn't exist and fails the test if it does.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.Error(t, err, "file should not exist: %s", path)
	require.True(t, os.IsNotExist(err), "expected file not to exist: %s", path)
}
