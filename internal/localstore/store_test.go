package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileReadsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "absent.json"))
	_, ok := s.Get("anything")
	assert.False(t, ok)
}

func TestSetGetRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := Open(path)

	require.NoError(t, s.Set("active_workspace", "ws-1"))
	v, ok := s.Get("active_workspace")
	require.True(t, ok)
	assert.Equal(t, "ws-1", v)

	require.NoError(t, s.Remove("active_workspace"))
	_, ok = s.Get("active_workspace")
	assert.False(t, ok)

	// Removing an absent key is fine.
	require.NoError(t, s.Remove("active_workspace"))
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := Open(path)
	require.NoError(t, s.Set("current_view", `{"view":{"kind":"list"}}`))

	s2 := Open(path)
	v, ok := s2.Get("current_view")
	require.True(t, ok)
	assert.Equal(t, `{"view":{"kind":"list"}}`, v)
}

func TestCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0600))

	s := Open(path)
	_, ok := s.Get("key")
	assert.False(t, ok)

	// Writing repairs the file.
	require.NoError(t, s.Set("key", "v"))
	s2 := Open(path)
	v, ok := s2.Get("key")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSetCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	s := Open(path)
	require.NoError(t, s.Set("k", "v"))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
