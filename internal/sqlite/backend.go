// Package sqlite implements the SQLite storage backend for the hotel CRM:
// connection management, the ordered migration list, and one repository per
// entity table.
package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/hotelcrm/internal/logging"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// dsnPragmas are applied by the driver to every new connection.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

var _ types.Store = (*Backend)(nil)

// Backend owns the single database handle of the process. Open it once at
// startup, hand its repositories to callers, and Close it at shutdown.
type Backend struct {
	mu         sync.RWMutex
	db         *sql.DB
	config     types.Config
	report     MigrationReport
	logger     *zap.Logger
	now        func() time.Time
	migrations fs.FS

	sellers     *sellersTable
	properties  *propertiesTable
	buyers      *buyersTable
	deals       *dealsTable
	activities  *activitiesTable
	tags        *tagsTable
	attachments *attachmentsTable
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger for connection and migration events.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) { b.logger = logging.OrNop(l) }
}

// WithClock replaces the wall clock used for timestamps and stale cutoffs.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithMigrations replaces the migration source. It takes precedence over
// Config.MigrationsDir.
func WithMigrations(fsys fs.FS) Option {
	return func(b *Backend) { b.migrations = fsys }
}

// NewBackend creates a backend that is not yet open; call Open before using
// any repository.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.sellers = &sellersTable{repoBase{backend: b, table: "sellers", entity: "seller"}}
	b.properties = &propertiesTable{repoBase{backend: b, table: "properties", entity: "property"}}
	b.buyers = &buyersTable{repoBase{backend: b, table: "buyers", entity: "buyer"}}
	b.deals = &dealsTable{repoBase{backend: b, table: "deals", entity: "deal"}}
	b.activities = &activitiesTable{repoBase{backend: b, table: "activities", entity: "activity"}}
	b.tags = &tagsTable{repoBase{backend: b, table: "tags", entity: "tag"}}
	b.attachments = &attachmentsTable{repoBase{backend: b, table: "property_attachments", entity: "attachment"}}
	return b
}

// Open resolves the database path from config, creates missing directories,
// opens the connection with foreign keys enforced, and applies migrations.
// Calling Open on an open backend returns the existing handle.
func (b *Backend) Open(config types.Config) (*sql.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db != nil {
		return b.db, nil
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dbPath := config.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// PRAGMA state is per connection; keep exactly one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", dbPath, err)
	}

	source, err := b.migrationSource(config)
	if err != nil {
		db.Close()
		return nil, err
	}

	report, err := Migrate(db, source, b.logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", dbPath, err)
	}

	b.db = db
	b.config = config
	b.report = report

	b.logger.Info("database opened",
		zap.String("path", dbPath),
		zap.String("env", config.Env),
		zap.Int("migrations_applied", report.Count(MigrationApplied)),
		zap.Int("migrations_failed", report.Count(MigrationFailed)),
	)
	return db, nil
}

// DB returns the open handle or ErrNotInitialized.
func (b *Backend) DB() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.db == nil {
		return nil, types.ErrNotInitialized
	}
	return b.db, nil
}

// Config returns the configuration passed to the last successful Open.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// MigrationReport returns the outcome of the migrations run by Open.
func (b *Backend) MigrationReport() MigrationReport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.report
}

// Close releases the handle. The backend may be opened again afterwards.
// Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.report = MigrationReport{}
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.logger.Info("database closed")
	return nil
}

// Now returns the backend clock reading in UTC.
func (b *Backend) Now() time.Time {
	return b.now().UTC()
}

func (b *Backend) Sellers() types.SellerRepository { return b.sellers }
func (b *Backend) Properties() types.PropertyRepository { return b.properties }
func (b *Backend) Buyers() types.BuyerRepository { return b.buyers }
func (b *Backend) Deals() types.DealRepository { return b.deals }
func (b *Backend) Activities() types.ActivityRepository { return b.activities }
func (b *Backend) Tags() types.TagRepository { return b.tags }
func (b *Backend) Attachments() types.AttachmentRepository { return b.attachments }

// migrationSource picks the option override, then a configured directory,
// then the scripts embedded in the binary.
func (b *Backend) migrationSource(config types.Config) (fs.FS, error) {
	if b.migrations != nil {
		return b.migrations, nil
	}
	if config.MigrationsDir != "" {
		info, err := os.Stat(config.MigrationsDir)
		if err != nil {
			return nil, fmt.Errorf("migrations directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("migrations directory %s is not a directory", config.MigrationsDir)
		}
		return os.DirFS(config.MigrationsDir), nil
	}
	return EmbeddedMigrations(), nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
