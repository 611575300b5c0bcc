package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MachineDir writes the given description files into a temporary directory
// and returns its absolute path. Keys are file names, values are contents.
// It fails the test immediately on error.
func MachineDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644), "Failed to write %s", name)
	}
	return dir
}

// Flip is a classical machine that rewrites a leading 1 as 0 and accepts.
const Flip = `initialState=q0
rules=q0,1,q1,0,RIGHT<>q1,0,qa,1,RIGHT
`
