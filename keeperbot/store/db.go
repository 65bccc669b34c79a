// Package store persists what the keeper bot observes: a mirror of the
// chain's vault event log, the latest snapshot of every vault it has seen
// and the history of its sweeps.
package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InMemorySQLiteDSN selects an ephemeral database. Passed as the file name
// to Open it skips the data directory entirely.
const InMemorySQLiteDSN = ":memory:"

const (
	dataDirPerm = 0o750

	// WAL with a busy timeout so the API can read while the sweeper writes
	filePragmas = "?_journal_mode=WAL&_busy_timeout=5000&cache=shared&mode=rwc"
)

// DB is the keeper bot's sqlite connection.
type DB struct {
	gorm *gorm.DB
	path string
}

// Open opens or creates <dir>/<file> and brings its schema up to date.
func Open(dir, file string) (*DB, error) {
	if file == InMemorySQLiteDSN {
		return OpenMemory()
	}
	if err := os.MkdirAll(dir, dataDirPerm); err != nil {
		return nil, errors.Wrapf(err, "failed to prepare data dir %s", dir)
	}
	path := filepath.Join(dir, file)
	return open(path, path+filePragmas)
}

// OpenMemory opens a database that lives as long as the returned DB.
func OpenMemory() (*DB, error) {
	return open(InMemorySQLiteDSN, InMemorySQLiteDSN)
}

func open(path, dsn string) (*DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// one connection; an in-memory database is per connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{gorm: conn, path: path}
	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) migrate() error {
	err := d.gorm.AutoMigrate(&EventRecord{}, &VaultSnapshot{}, &SweepRun{})
	return errors.Wrap(err, "failed to migrate schema")
}

// Path is the database file, or InMemorySQLiteDSN.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) InMemory() bool {
	return d.path == InMemorySQLiteDSN
}

// Gorm exposes the connection for queries.
func (d *DB) Gorm() *gorm.DB {
	return d.gorm
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close database")
}

// CheckpointWAL folds the write-ahead log back into the database file and
// truncates it. In-memory databases have no log.
func (d *DB) CheckpointWAL() error {
	if d.InMemory() {
		return nil
	}
	return errors.Wrap(d.gorm.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error, "failed to checkpoint WAL")
}
