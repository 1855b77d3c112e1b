package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	name := filepath.Join(t.TempDir(), "test.db")
	assert.False(t, Exists(name))

	db, err := Open(name)
	require.NoError(t, err)
	assert.True(t, Exists(name))

	var tables []string
	require.NoError(t, db.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' AND name IN ('Option','SyncLog','Version') ORDER BY name;"))
	assert.Equal(t, []string{"Option", "SyncLog", "Version"}, tables)
	require.NoError(t, db.Close())

	// reopening must not duplicate the version row
	db, err = Open(name)
	require.NoError(t, err)
	defer db.Close()
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM Version;"))
	assert.Equal(t, 1, count)
}
