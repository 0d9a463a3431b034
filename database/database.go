package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"craftbot/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoadConfig loads the configuration from config.json and applies
// environment overrides for secrets.
func LoadConfig(filename string) (models.Config, error) {
	var config models.Config
	configFile, err := os.Open(filename)
	if err != nil {
		return config, err
	}
	defer configFile.Close()

	if err := json.NewDecoder(configFile).Decode(&config); err != nil {
		return config, err
	}

	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		config.DiscordToken = v
	}
	if v := os.Getenv("JWT_KEY"); v != "" {
		config.JWTKey = v
	}
	if v := os.Getenv("DASHBOARD_PASSWORD"); v != "" {
		config.DashboardPassword = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.DBPassword = v
	}
	return config, nil
}

func InitPostgreSQL(config models.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s password=%s sslmode=%s",
		config.DBHost, config.DBUser, config.DBName, config.DBPassword, config.DBSSLMode)

	const maxRetries = 3
	const retryInterval = 5 * time.Second
	var err error
	for i := 0; i <= maxRetries; i++ {
		gormDB, openErr := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr == nil {
			return gormDB, nil
		}
		err = openErr
		logger.Error("retrying database connection", zap.Int("retry", i), zap.Error(err))
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("failed to connect to postgres: %w", err)
}

// Migrate creates or updates the schema, including the partial unique
// index that limits active challenges to one row and the composite
// unique index that limits submissions to one per user per challenge.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Challenge{},
		&models.Submission{},
		&models.Reminder{},
		&models.SeenDiscussion{},
		&models.PredefinedWarning{},
		&models.Warning{},
		&models.AuditEntry{},
	)
}

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := os.Getenv("REDIS_DB")
	db, err := strconv.Atoi(redisDB)
	if err != nil {
		logger.Info("Invalid REDIS_DB value, using default DB 0")
		db = 0
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	if _, err = rdb.Ping(context.Background()).Result(); err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		return nil, err
	}

	logger.Info("Connected to Redis")
	return rdb, nil
}
