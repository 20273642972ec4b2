package models

import (
	"fmt"
	"strings"
	"sync/atomic"

	"pvelist/config"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres" // using postgres sql
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dialector picks the gorm driver for the configured database.
func dialector(conf *config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(conf.DBDriver) {
	case "", "sqlite":
		return sqlite.Open(conf.DBPath), nil
	case "postgres":
		postgresConn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s",
			conf.DBHost, conf.DBPort, conf.DBUser, conf.DBName, conf.DBPassword)
		return postgres.Open(postgresConn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", conf.DBDriver)
	}
}

// SetupModels setup database
func SetupModels(conf *config.Config) (*gorm.DB, error) {
	dialect, err := dialector(conf)
	if err != nil {
		return nil, err
	}

	// Open connection
	db, err := gorm.Open(dialect, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables, if not yet
	if err := db.AutoMigrate(&FolderAssignment{}, &LegacyImport{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Apply additional migrations
	if _, err := ImportLegacyFolders(db, conf.LegacyFoldersFile); err != nil {
		log.Errorf("Legacy folder import failed: %v", err)
	}
	return db, nil
}

var testDBSeq atomic.Int64

// InitTestDB opens a private in-memory database using the TESTING preset.
func InitTestDB() (*gorm.DB, error) {
	conf := *config.TestConfig
	conf.DBPath = fmt.Sprintf("file:pvelist_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	conf.LegacyFoldersFile = ""
	return SetupModels(&conf)
}
