package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/medicart/internal/models"
)

const sqlitePrefix = "sqlite://"

func configurePool(sqlDB *sql.DB, sqliteMode bool) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	if sqliteMode {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Dialector picks the gorm driver from the URL. "sqlite://<path>" opens a
// SQLite file, anything else is treated as a PostgreSQL DSN. driver selects
// the database/sql driver for postgres: "pgx" (default) or "pq".
func Dialector(url, driver string) gorm.Dialector {
	if strings.HasPrefix(url, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(url, sqlitePrefix))
	}
	if driver == "pq" {
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: url})
	}
	return postgres.Open(url)
}

func Open(ctx context.Context, url, driver string) (*gorm.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqliteMode := strings.HasPrefix(url, sqlitePrefix)
	db, err := gorm.Open(Dialector(url, driver), &gorm.Config{
		PrepareStmt: !sqliteMode,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB, sqliteMode)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Tables...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
