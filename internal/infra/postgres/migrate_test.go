package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	pgx.Rows
	values []string
	pos    int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.values[r.pos-1]
	return nil
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type fakeMigrationDB struct {
	applied []string
	execs   []string
	txs     []*fakeTx
	txErr   error
}

func (db *fakeMigrationDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (db *fakeMigrationDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return &fakeRows{values: db.applied}, nil
}

func (db *fakeMigrationDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (db *fakeMigrationDB) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{execErr: db.txErr}
	db.txs = append(db.txs, tx)
	return tx, nil
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"migrations/002_indexes.sql": {Data: []byte("CREATE INDEX users_chat_id ON users (chat_id);")},
		"migrations/001_users.sql":   {Data: []byte("CREATE TABLE users (id BIGINT);")},
	}
}

func TestMigrate_AppliesPendingInOrder(t *testing.T) {
	db := &fakeMigrationDB{}

	applied, err := migrate(context.Background(), db, testMigrations())
	require.NoError(t, err)

	assert.Equal(t, []string{"001_users.sql", "002_indexes.sql"}, applied)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "schema_migrations")

	require.Len(t, db.txs, 2)
	assert.True(t, strings.HasPrefix(db.txs[0].execs[0], "CREATE TABLE users"))
	assert.Contains(t, db.txs[0].execs[1], "INSERT INTO schema_migrations")
	assert.True(t, db.txs[0].committed)
	assert.True(t, db.txs[1].committed)
}

func TestMigrate_SkipsApplied(t *testing.T) {
	db := &fakeMigrationDB{applied: []string{"001_users.sql"}}

	applied, err := migrate(context.Background(), db, testMigrations())
	require.NoError(t, err)

	assert.Equal(t, []string{"002_indexes.sql"}, applied)
	require.Len(t, db.txs, 1)
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	db := &fakeMigrationDB{txErr: errors.New("syntax error")}

	applied, err := migrate(context.Background(), db, testMigrations())
	require.Error(t, err)

	assert.Empty(t, applied)
	assert.Contains(t, err.Error(), "001_users.sql")
	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].rolledBack)
}

func TestMigrate_EmbeddedFiles(t *testing.T) {
	db := &fakeMigrationDB{}

	applied, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Contains(t, applied, "001_users.sql")
}
