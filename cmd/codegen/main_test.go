package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"EventWeights/internal/domain/models"
	"EventWeights/pkg/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCatalog(t *testing.T) {
	var buf bytes.Buffer
	n, err := writeCatalog(&buf, []models.EventDefinition{
		{ID: 9, OccurrenceCount: 4, Type: models.Type1},
		{ID: 2, OccurrenceCount: 1, Type: models.Type0},
	})
	require.NoError(t, err)
	assert.Equal(t, 54, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 54)
	assert.Equal(t, []string{"2_0_0", "2_0_1", "9_1_0", "9_1_1", "9_1_0_-12", "9_1_1_-12"}, lines[:6])
	assert.Equal(t, "9_1_1_12", lines[53])
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "calendar.db")

	db, err := sqlite.Open(context.Background(), dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE events (event_id INTEGER, occurrence_count INTEGER)`,
		`INSERT INTO events VALUES (9, 4), (2, 1)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log:
  level: error
store:
  driver: sqlite
  dsn: `+dbPath+`
calendar:
  events_table: events
  occurrences_table: calendar
`), 0o600))

	out := filepath.Join(dir, "weights_table.csv")
	require.NoError(t, run(cfgPath, out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 54)
	assert.Equal(t, "2_0_0", lines[0])
	assert.Equal(t, "9_1_1_12", lines[53])
}

func TestRunReportsErrors(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "missing.yaml"), "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config load")
}
