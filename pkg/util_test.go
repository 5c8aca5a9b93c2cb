package pkg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPathExists(t *testing.T) {
	exists, err := PathExists("/invalid/path/some-dir", true)
	assert.NoError(t, err)
	assert.False(t, exists)
	exists, err = PathExists("/invalid/path/some-file", false)
	assert.NoError(t, err)
	assert.False(t, exists)

	dir := t.TempDir()
	exists, err = PathExists(dir, true)
	require.NoError(t, err)
	assert.True(t, exists)
	// a dir is not a file
	exists, err = PathExists(dir, false)
	require.NoError(t, err)
	assert.False(t, exists)

	file := filepath.Join(dir, "dump.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))
	exists, err = PathExists(file, false)
	require.NoError(t, err)
	assert.True(t, exists)
}
