// Package database manages the run catalog connection. Postgres is the
// primary backend; SQLite keeps the catalog local, either as a plain
// file or as an in-memory fallback dumped to disk when the run ends.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bedlam-render/sequencer/internal/model"
)

// Manager handles catalog connections and schema setup.
type Manager struct {
	DB              *gorm.DB
	SqlDB           *sql.DB
	IsValid         bool
	ShouldSaveLocal bool // in-memory fallback active, dump to SqliteFilePath at run end
	SqliteFilePath  string
	Logger          zerolog.Logger
}

// NewManager creates a new catalog manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		IsValid:         false,
		ShouldSaveLocal: false,
		Logger:          log,
	}
}

// Connect establishes the catalog connection. manifest.type "sqlite"
// opens the file at manifest.path directly; anything else dials
// Postgres and falls back to an in-memory SQLite DB when that fails.
func (m *Manager) Connect() error {
	var err error

	if viper.GetString("manifest.type") == "sqlite" {
		m.SqliteFilePath = viper.GetString("manifest.path")
		m.DB, err = m.GetSqliteDB(m.SqliteFilePath)
		if err != nil || m.DB == nil {
			m.IsValid = false
			return fmt.Errorf("failed to open local SQLite catalog: %s", err)
		}
	} else {
		m.DB, err = m.GetPostgresDB()
		if err != nil {
			m.Logger.Error().Err(err).Msg("Failed to connect to Postgres catalog, trying SQLite")
			m.ShouldSaveLocal = true
			m.SqliteFilePath = viper.GetString("manifest.path")
			m.DB, err = m.GetSqliteDB("")
			if err != nil || m.DB == nil {
				m.IsValid = false
				return fmt.Errorf("failed to get local SQLite DB: %s", err)
			}
		}
	}

	// test connection
	m.SqlDB, err = m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %s", err)
	}

	err = m.SqlDB.Ping()
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to validate connection, trying SQLite")
		m.ShouldSaveLocal = true
		m.SqliteFilePath = viper.GetString("manifest.path")
		m.DB, err = m.GetSqliteDB("")
		if err != nil || m.DB == nil {
			m.IsValid = false
			return fmt.Errorf("failed to get local SQLite DB: %s", err)
		}
		m.SqlDB, err = m.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %s", err)
		}
	} else {
		m.Logger.Info().Msg("Connected to catalog database")
	}
	m.IsValid = true

	if !m.ShouldSaveLocal && m.DB.Dialector.Name() == "postgres" {
		m.SqlDB.SetMaxOpenConns(10)
	}

	return nil
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	if m.SqlDB == nil {
		return nil
	}
	return m.SqlDB.Close()
}

// GetPostgresDB returns a connection to the Postgres catalog.
func (m *Manager) GetPostgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("manifest.host"),
		viper.GetString("manifest.port"),
		viper.GetString("manifest.username"),
		viper.GetString("manifest.password"),
		viper.GetString("manifest.database"),
	)

	m.Logger.Debug().Msgf("Connecting to Postgres catalog at '%s'", dsn)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// GetSqliteDB returns a connection to a SQLite catalog.
// If path is empty, uses an in-memory database.
func (m *Manager) GetSqliteDB(path string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if path != "" {
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
			CreateBatchSize:        2000,
			Logger:                 logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			m.IsValid = false
			return nil, err
		}
		m.Logger.Info().Str("path", path).Msg("Using local SQLite catalog")
	} else {
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
			CreateBatchSize:        2000,
			Logger:                 logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			m.IsValid = false
			return nil, err
		}
		m.Logger.Info().Msg("Using local SQLite catalog in memory with disk dump at run end")
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA cache_size = -32000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA page_size = 32768;",
		"PRAGMA mmap_size = 30000000000;",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}

	return db, nil
}

// Setup migrates the catalog schema.
func (m *Manager) Setup() error {
	// Geometry columns need PostGIS on the Postgres side
	if m.DB.Dialector.Name() == "postgres" {
		err := m.DB.Exec(`CREATE Extension IF NOT EXISTS postgis;`).Error
		if err != nil {
			m.IsValid = false
			return fmt.Errorf("failed to create PostGIS Extension: %s", err)
		}
		m.Logger.Info().Msg("PostGIS Extension created")
	}

	m.Logger.Info().Msg("Migrating catalog schema")
	var err error
	if m.DB.Dialector.Name() == "postgres" {
		err = m.DB.AutoMigrate(model.DatabaseModels...)
	} else {
		err = m.DB.AutoMigrate(model.DatabaseModelsSQLite...)
	}
	if err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to migrate catalog schema: %s", err)
	}

	m.Logger.Info().Msg("Catalog setup complete")
	return nil
}

// DumpMemoryToDisk vacuums the in-memory catalog to a file.
func (m *Manager) DumpMemoryToDisk() error {
	if m.SqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	// remove existing file if it exists
	if exists, err := os.Stat(m.SqliteFilePath); err == nil && exists != nil {
		if err := os.Remove(m.SqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	start := time.Now()
	err := m.DB.Exec("VACUUM INTO 'file:" + m.SqliteFilePath + "';").Error
	if err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}

	m.Logger.Debug().Dur("duration", time.Since(start)).Msg("Dumped memory catalog to disk")
	return nil
}
