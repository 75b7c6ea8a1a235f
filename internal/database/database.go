package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/emilythestrangee/askme/backend/internal/logger"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health(ctx context.Context) map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Config returns the gorm settings shared by every dialect.
func Config(zl zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Gorm(zl),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// New opens the PostgreSQL connection, migrates the schema and tunes the pool.
func New(dsn string, zl zerolog.Logger) (Service, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config(zl))
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	zl.Info().Msg("Database connected successfully")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	zl.Info().Msg("Database migrations completed")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return Wrap(db, zl), nil
}

// Wrap exposes an already-open gorm handle as a Service.
func Wrap(db *gorm.DB, zl zerolog.Logger) Service {
	return &service{db: db, log: zl}
}

// Migrate creates or updates every table, including the vote uniqueness
// constraints and the one-correct-answer partial index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Get underlying SQL DB
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	// Ping the database
	err = sqlDB.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.log.Info().Msg("Disconnected from database")
	return sqlDB.Close()
}
