package sqlite

import (
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// openRawDB opens a database file without running any migrations.
func openRawDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "raw.db")+dsnPragmas)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func columnExists(t *testing.T, db *sql.DB, table, column string) bool {
	t.Helper()
	cols, err := queryStrings(db, "SELECT name FROM pragma_table_info(?)", table)
	require.NoError(t, err)
	for _, c := range cols {
		if c == column {
			return true
		}
	}
	return false
}

func embeddedScript(t *testing.T, name string) *fstest.MapFile {
	t.Helper()
	data, err := fs.ReadFile(EmbeddedMigrations(), name)
	require.NoError(t, err)
	return &fstest.MapFile{Data: data}
}

func TestEmbeddedMigrationsComplete(t *testing.T) {
	for _, name := range migrationNames {
		_, err := fs.Stat(EmbeddedMigrations(), name)
		assert.NoError(t, err, name)
	}
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name  string
		fsys  func(t *testing.T) fs.FS
		check func(t *testing.T, db *sql.DB, report MigrationReport)
	}{
		{
			name: "full set on a fresh database",
			fsys: func(t *testing.T) fs.FS { return EmbeddedMigrations() },
			check: func(t *testing.T, db *sql.DB, report MigrationReport) {
				assert.Equal(t, len(migrationNames), report.Count(MigrationApplied))
				for _, table := range crmTables {
					assert.True(t, tableExists(t, db, table), table)
				}
				assert.True(t, columnExists(t, db, "properties", "incarico_scadenza"))
				assert.True(t, columnExists(t, db, "deals", "acconto_venditore"))
			},
		},
		{
			name: "no scripts falls back to inline schema",
			fsys: func(t *testing.T) fs.FS { return fstest.MapFS{} },
			check: func(t *testing.T, db *sql.DB, report MigrationReport) {
				assert.Equal(t, MigrationInline, report.Results[0].Status)
				assert.Empty(t, report.Results[0].Error)
				assert.Equal(t, len(migrationNames)-1, report.Count(MigrationSkipped))
				for _, table := range crmTables {
					assert.True(t, tableExists(t, db, table), table)
				}
			},
		},
		{
			name: "subset applies what is present",
			fsys: func(t *testing.T) fs.FS {
				return fstest.MapFS{
					"001_schema.sql":               embeddedScript(t, "001_schema.sql"),
					"011_property_attachments.sql": embeddedScript(t, "011_property_attachments.sql"),
				}
			},
			check: func(t *testing.T, db *sql.DB, report MigrationReport) {
				assert.Equal(t, 2, report.Count(MigrationApplied))
				assert.Equal(t, len(migrationNames)-2, report.Count(MigrationSkipped))
				assert.True(t, tableExists(t, db, "property_attachments"))
				assert.False(t, tableExists(t, db, "property_operation_types"))
				assert.False(t, columnExists(t, db, "properties", "codice"))
			},
		},
		{
			name: "failing script does not stop later scripts",
			fsys: func(t *testing.T) fs.FS {
				return fstest.MapFS{
					"001_schema.sql":               embeddedScript(t, "001_schema.sql"),
					"003_property_codice.sql":      &fstest.MapFile{Data: []byte("ALTER TABLE missing_table ADD COLUMN x TEXT;")},
					"011_property_attachments.sql": embeddedScript(t, "011_property_attachments.sql"),
				}
			},
			check: func(t *testing.T, db *sql.DB, report MigrationReport) {
				assert.Equal(t, 1, report.Count(MigrationFailed))
				assert.Equal(t, MigrationFailed, report.Results[2].Status)
				assert.NotEmpty(t, report.Results[2].Error)
				assert.Equal(t, MigrationApplied, report.Results[10].Status)
				assert.True(t, tableExists(t, db, "property_attachments"))
			},
		},
		{
			name: "failed script is rolled back as a whole",
			fsys: func(t *testing.T) fs.FS {
				return fstest.MapFS{
					"001_schema.sql": embeddedScript(t, "001_schema.sql"),
					"005_property_regione.sql": &fstest.MapFile{Data: []byte(
						"CREATE TABLE half_done (id TEXT);\nALTER TABLE missing_table ADD COLUMN x TEXT;",
					)},
				}
			},
			check: func(t *testing.T, db *sql.DB, report MigrationReport) {
				assert.Equal(t, MigrationFailed, report.Results[4].Status)
				assert.False(t, tableExists(t, db, "half_done"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openRawDB(t)
			report, err := Migrate(db, tt.fsys(t), zap.NewNop())
			require.NoError(t, err)
			require.Len(t, report.Results, len(migrationNames))
			tt.check(t, db, report)
		})
	}
}

func TestMigrateTwiceIsSafe(t *testing.T) {
	db := openRawDB(t)

	_, err := Migrate(db, EmbeddedMigrations(), zap.NewNop())
	require.NoError(t, err)

	report, err := Migrate(db, EmbeddedMigrations(), zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, report.Count(MigrationFailed))
	for _, res := range report.Results[1:] {
		assert.Equal(t, MigrationAlreadyApplied, res.Status, res.Name)
	}

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrateKeepsDataAcrossOptionalSellerRebuild(t *testing.T) {
	db := openRawDB(t)

	base := fstest.MapFS{"001_schema.sql": embeddedScript(t, "001_schema.sql")}
	_, err := Migrate(db, base, zap.NewNop())
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO sellers (id, name, created_at, updated_at) VALUES ('s1', 'Seller', 'x', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO properties (id, name, seller_id, created_at, updated_at) VALUES ('p1', 'Hotel', 's1', 'x', 'x')`)
	require.NoError(t, err)

	_, err = Migrate(db, EmbeddedMigrations(), zap.NewNop())
	require.NoError(t, err)

	_, err = db.Exec("DELETE FROM sellers WHERE id = 's1'")
	require.NoError(t, err)

	var sellerID sql.NullString
	require.NoError(t, db.QueryRow("SELECT seller_id FROM properties WHERE id = 'p1'").Scan(&sellerID))
	assert.False(t, sellerID.Valid)
}

func TestMigratePragmaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`PRAGMA foreign_keys = OFF`).WillReturnError(errors.New("disk I/O error"))

	_, err = Migrate(db, fstest.MapFS{}, zap.NewNop())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAlreadyApplied(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"table property_attachments already exists", true},
		{"duplicate column name: codice", true},
		{"no such table: properties", true},
		{"no such table: deals", false},
		{"near \"ALTR\": syntax error", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isAlreadyApplied(errors.New(tt.msg)), tt.msg)
	}
}
