package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todo-list-api/app/services"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenStore builds the item store selected by cfg.Database.Driver. The store
// is opened once and lives for the whole process.
func OpenStore(ctx context.Context, cfg *Config, logger *log.Logger) (services.ItemStore, error) {
	switch cfg.Database.Driver {
	case DriverMemory:
		return services.NewMemoryItemStore(), nil
	case DriverNeo4j:
		driver, err := InitNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, fmt.Errorf("initialize neo4j driver: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			return nil, fmt.Errorf("connect to neo4j at %s: %w", cfg.Neo4j.URI, err)
		}
		store, err := services.NewNeo4jItemStore(ctx, driver)
		if err != nil {
			driver.Close(ctx)
			return nil, err
		}
		return store, nil
	case DriverSQLite, DriverPostgres:
		db, err := InitDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		store, err := services.NewSQLItemStore(db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// InitDatabase opens a gorm connection for the sqlite or postgres driver and
// checks that it is reachable.
func InitDatabase(ctx context.Context, cfg DatabaseConfig, logger *log.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: newGormLogger(logger)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	case DriverPostgres:
		var conn *sql.DB
		conn, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormCfg)
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time; ":memory:" is also per connection.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to database", "driver", cfg.Driver)
	return db, nil
}

func newGormLogger(logger *log.Logger) gormlogger.Interface {
	return gormlogger.New(
		logger.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}
