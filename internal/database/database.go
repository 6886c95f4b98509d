package database

import (
	"context"
	"fmt"
	"time"

	"payment-relay/internal/config"
	"payment-relay/internal/models"
	"payment-relay/internal/store"
	"payment-relay/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Connections holds whatever backends the selected store driver opened
type Connections struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Open connects the transaction store selected by STORE_DRIVER
func Open(cfg *config.Config) (store.Store, *Connections, error) {
	conns := &Connections{}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logging.Warnf("Using in-memory transaction store, documents are lost on restart")
		return store.NewMemoryStore(), conns, nil

	case config.StoreDriverRedis:
		client, err := ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		conns.Redis = client
		return store.NewRedisStore(client), conns, nil

	default:
		db, err := Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := Migrate(db); err != nil {
			conns.DB = db
			conns.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		conns.DB = db
		return store.NewGormStore(db), conns, nil
	}
}

// Connect opens PostgreSQL when DATABASE_URL is set and SQLite otherwise
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg)),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn := cfg.DatabaseURL; dsn == "" {
		// Fallback to SQLite for development
		logging.Infof("Database URL not set, using SQLite at %s", cfg.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	} else {
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return db, nil
}

func gormLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.IsDevelopment() {
		return logger.Info
	}
	return logger.Warn
}

// Migrate creates or updates the transactions table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Transaction{})
}

// ConnectRedis parses the URL and pings the server before returning the client
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is not set")
	}

	logging.Infof("Connecting to Redis: %s", maskRedisURL(redisURL))

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Errorf("Failed to parse Redis URL: %v", err)
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logging.Errorf("Failed to connect to Redis: %v", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return client, nil
}

// maskRedisURL masks sensitive information in Redis URL for logging
func maskRedisURL(url string) string {
	if len(url) > 20 {
		return url[:10] + "***" + url[len(url)-10:]
	}
	return "***"
}

// Close closes every open connection, logging failures
func (c *Connections) Close() {
	if c == nil {
		return
	}

	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logging.Errorf("Failed to close database: %v", err)
			}
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logging.Errorf("Failed to close Redis: %v", err)
		}
	}
}
