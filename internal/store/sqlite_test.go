package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minirel/minirel/internal/ir"
)

func createTestDB(t *testing.T, statements ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestLoadDatabase(t *testing.T) {
	path := createTestDB(t,
		`CREATE TABLE users (id INTEGER, name TEXT)`,
		`INSERT INTO users VALUES (1, 'Al'), (2, 'Bo')`,
		`CREATE TABLE orders (id INTEGER, user_id INTEGER)`,
		`INSERT INTO orders VALUES (10, 1)`,
	)

	tables, err := LoadDatabase(path, []ir.FromItem{
		{Source: "users", As: "u"},
		{Source: "orders", As: "o"},
	})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "u", users.Alias)
	assert.Equal(t, Schema{
		{Name: "id", Type: ir.TypeInt},
		{Name: "name", Type: ir.TypeString},
	}, users.Schema)
	require.Len(t, users.Rows, 2)
	assert.Equal(t, ir.Int(1), users.Rows[0]["u.id"])
	assert.Equal(t, ir.String("Al"), users.Rows[0]["u.name"])

	orders := tables[1]
	assert.Equal(t, ir.Int(1), orders.Rows[0]["o.user_id"])
}

func TestLoadDatabase_MissingTable(t *testing.T) {
	path := createTestDB(t, `CREATE TABLE users (id INTEGER)`)

	_, err := LoadDatabase(path, []ir.FromItem{{Source: "ghost", As: "g"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `load table "ghost"`)
}

func TestLoadDatabase_RejectsUnsupportedColumnType(t *testing.T) {
	path := createTestDB(t,
		`CREATE TABLE readings (id INTEGER, value REAL)`,
		`INSERT INTO readings VALUES (1, 1.5)`,
	)

	_, err := LoadDatabase(path, []ir.FromItem{{Source: "readings", As: "r"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported SQLite column type")
}

func TestLoadDatabase_RejectsNull(t *testing.T) {
	path := createTestDB(t,
		`CREATE TABLE users (id INTEGER, name TEXT)`,
		`INSERT INTO users VALUES (1, NULL)`,
	)

	_, err := LoadDatabase(path, []ir.FromItem{{Source: "users", As: "u"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NULL values are not supported")
}

func TestSqliteColumnType(t *testing.T) {
	typ, err := sqliteColumnType("INTEGER")
	require.NoError(t, err)
	assert.Equal(t, ir.TypeInt, typ)

	typ, err = sqliteColumnType("text")
	require.NoError(t, err)
	assert.Equal(t, ir.TypeString, typ)

	_, err = sqliteColumnType("BLOB")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"users"`, quoteIdent("users"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
