package sentinel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerLifecycle(t *testing.T) {
	t.Parallel()

	m := New(t.TempDir(), "postgres")
	assert.Equal(t, ".postgres-initialized", filepath.Base(m.Path))

	exists, err := m.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Write())

	exists, err = m.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	// Writing again is a no-op, not an error.
	require.NoError(t, m.Write())
}

func TestMarkerCreatesParentDirs(t *testing.T) {
	t.Parallel()

	m := New(filepath.Join(t.TempDir(), "data", "neo4j"), "neo4j")
	require.NoError(t, m.Write())

	exists, err := m.Exists()
	require.NoError(t, err)
	assert.True(t, exists)
}
