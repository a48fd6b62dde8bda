package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	controlDB *gorm.DB

	tenantMu  sync.RWMutex
	tenantDBs = map[string]*gorm.DB{}
)

// GetDB returns the control-plane connection (shared catalogs, tenant registry).
func GetDB() *gorm.DB {
	return controlDB
}

// ConnectDatabaseWithRetry connects the control-plane pool and sets the global DB.
// Call this from main() AFTER the HTTP server is listening.
func ConnectDatabaseWithRetry() {
	var attempt int
	for {
		attempt++
		db, err := openSchema("public")
		if err == nil {
			controlDB = db
			log.Printf("connected to database (attempt=%d)", attempt)
			return
		}

		sleep := time.Second * time.Duration(1<<minInt(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// GetTenantDB returns the read/write pool scoped to one tenant schema.
// Pools are opened lazily and cached for the process lifetime.
func GetTenantDB(tenantId string) (*gorm.DB, error) {
	if tenantId == "" {
		return nil, errors.New("tenant id is required")
	}

	tenantMu.RLock()
	db, ok := tenantDBs[tenantId]
	tenantMu.RUnlock()
	if ok {
		return db, nil
	}

	tenantMu.Lock()
	defer tenantMu.Unlock()
	if db, ok = tenantDBs[tenantId]; ok {
		return db, nil
	}

	db, err := openSchema(tenantSchemaName(tenantId))
	if err != nil {
		return nil, err
	}
	tenantDBs[tenantId] = db
	return db, nil
}

// ListTenantIds enumerates active tenants from the shared registry.
func ListTenantIds(ctx context.Context) ([]string, error) {
	if controlDB == nil {
		return nil, errors.New("database is not connected")
	}
	var ids []string
	err := controlDB.WithContext(ctx).Table("public.tenants").
		Where("is_active = ?", true).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func tenantSchemaName(tenantId string) string {
	return "crm_" + tenantId
}

func openSchema(schemaName string) (*gorm.DB, error) {
	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			stringFromEnv("DB_HOST", "localhost"),
			stringFromEnv("DB_PORT", "5432"),
			stringFromEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			stringFromEnv("DB_NAME", "crm"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), initConfig(schemaName))
	if err != nil {
		return nil, err
	}

	// Tune database/sql pool for production.
	// Env overrides (optional):
	// - DB_MAX_OPEN_CONNS (default 50)
	// - DB_MAX_IDLE_CONNS (default 25)
	// - DB_CONN_MAX_LIFETIME_SECONDS (default 300)
	// - DB_CONN_MAX_IDLE_TIME_SECONDS (default 60)
	if sqlDB, derr := db.DB(); derr == nil && sqlDB != nil {
		maxOpen := intFromEnv("DB_MAX_OPEN_CONNS", 50)
		maxIdle := intFromEnv("DB_MAX_IDLE_CONNS", 25)
		connMaxLife := time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second
		connMaxIdle := time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second

		if maxOpen > 0 {
			sqlDB.SetMaxOpenConns(maxOpen)
		}
		if maxIdle >= 0 {
			sqlDB.SetMaxIdleConns(maxIdle)
		}
		if connMaxLife > 0 {
			sqlDB.SetConnMaxLifetime(connMaxLife)
		}
		if connMaxIdle > 0 {
			sqlDB.SetConnMaxIdleTime(connMaxIdle)
		}
	}

	if pluginErr := db.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return db, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func initConfig(schemaName string) *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(schemaName),
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
	return newLogger
}

// InitNamingStrategy pins every table to the tenant's schema.
func initNamingStrategy(schemaName string) *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   schemaName + ".",
	}
}
