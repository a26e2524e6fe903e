package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore_DialectFollowsDriverName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pg := NewSQLStore(sqlx.NewDb(db, "pgx"), nil)
	assert.True(t, pg.postgres())
	assert.Contains(t, pg.createTableSQL("t"), "JSONB")
	assert.Contains(t, pg.upsertSQL("t"), "VALUES ($1, CAST($2 AS JSONB), $3)")

	lite := NewSQLStore(sqlx.NewDb(db, "sqlite"), nil)
	assert.False(t, lite.postgres())
	assert.NotContains(t, lite.createTableSQL("t"), "JSONB")
	assert.Contains(t, lite.upsertSQL("t"), "VALUES (?, ?, ?)")
}
