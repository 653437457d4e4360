package util

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"batterymart/model"
)

func InitDB(cfg DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	// 1. BOOTSTRAP: CREATE DATABASE IF NOT EXISTS
	maintenanceDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=postgres port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Port, cfg.SSLMode)

	tempDB, err := gorm.Open(postgres.Open(maintenanceDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres instance: %w", err)
	}

	var exists bool
	if err := tempDB.Raw("SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = ?)", cfg.Name).
		Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		logger.Info("database not found, creating", zap.String("database", cfg.Name))
		// Identifiers cannot be bound as parameters.
		if err := tempDB.Exec(fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.Name)).Error; err != nil {
			return nil, fmt.Errorf("create database: %w", err)
		}
	}

	if sqlDB, err := tempDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	// 2. CONNECT TO APP DATABASE
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to application database: %w", err)
	}

	// 3. AUTO MIGRATE
	logger.Info("running AutoMigrate")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.Notification{},
		&model.VerificationRecord{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	// 4. CONFIGURE CONNECTION POOL
	postgresDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying DB object: %w", err)
	}
	postgresDB.SetMaxOpenConns(25)
	postgresDB.SetMaxIdleConns(25)
	// Recycle connections to avoid stale connection errors behind poolers
	postgresDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("database connected, migrated, and pool configured")
	return db, nil
}
