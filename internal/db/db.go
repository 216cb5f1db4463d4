package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tecnicanomade/riego/internal/config"
)

// Connect opens the configured database. TranslateError is enabled so
// uniqueness violations surface as gorm.ErrDuplicatedKey on both drivers.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}

	var conn *gorm.DB
	var err error
	// Retry to give the database time to come up.
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err == nil {
			return conn, nil
		}
		log.Printf("db connection attempt %d/5 failed, retrying...", i+1)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("db connection failed: %w", err)
}
