// Package db provides database connectivity and migration functionality for the forum API.
// It handles establishing the pgx connection pool and running the golang-migrate
// migrations in migrations/.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	// The postgres database driver registers the postgres:// scheme with golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// The file source driver reads migrations from the local filesystem.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	// database/sql driver used by migrate's postgres driver.
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/user/forum-go/apperror"
	"github.com/user/forum-go/config"
)

// NewPool establishes the application's pgxpool connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Bound pool creation so an unreachable database fails start-up instead of hanging it.
	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}

	return pool, nil
}

// Direction selects which way migrations run.
type Direction int

const (
	Up Direction = iota
	Down
)

// RunMigrations applies (Up) or rolls back (Down) every migration found in
// migrationsPath. Having nothing to do is not an error.
func RunMigrations(cfg *config.PoolConfig, migrationsPath string, dir Direction, log *zap.Logger) error {
	m, err := migrate.New("file://"+migrationsPath, cfg.DSN())
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn("error closing migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			log.Warn("error closing migration database instance", zap.Error(dbErr))
		}
	}()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return apperror.NewMigrationError(fmt.Sprintf("unknown migration direction %d", dir), nil)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations", err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		log.Info("migrations complete", zap.String("version", "none"))
	case verr != nil:
		log.Warn("could not read migration version", zap.Error(verr))
	default:
		log.Info("migrations complete", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}
