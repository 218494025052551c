package database

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/url"
	"strings"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/pixgate/internal/models"
)

var db *gorm.DB

// Connect initializes the database connection, runs migrations and seeds
// the subacquirer catalog.
func Connect(dsn string) *gorm.DB {
	if db != nil {
		return db
	}

	if err := ensureDatabase(dsn); err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("warning: failed to ensure uuid-ossp extension: %v", err)
	}

	if err := migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	if err := seedSubacquirers(conn); err != nil {
		log.Fatalf("subacquirer seeding failed: %v", err)
	}

	db = conn
	return db
}

// DB exposes the initialized gorm.DB instance.
func DB() *gorm.DB {
	return db
}

func migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.Subacquirer{},
		&models.Account{},
		&models.PixTransaction{},
		&models.Withdrawal{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

func seedSubacquirers(conn *gorm.DB) error {
	seeds := []struct {
		name    string
		slug    string
		baseURL string
		apiKey  string
	}{
		{"SubadqA", "subadq-a", "https://0acdeaee-1729-4d55-80eb-d54a125e5e18.mock.pstmn.io", "test_key_subadq_a"},
		{"SubadqB", "subadq-b", "https://ef8513c8-fd99-4081-8963-573cd135e133.mock.pstmn.io", "test_key_subadq_b"},
		{"Mock", "mock", "", ""},
	}

	for _, seed := range seeds {
		credentials, err := json.Marshal(map[string]string{"api_key": seed.apiKey})
		if err != nil {
			return err
		}

		sub := models.Subacquirer{
			Name:        seed.name,
			Slug:        seed.slug,
			BaseURL:     seed.baseURL,
			Credentials: credentials,
			IsActive:    true,
		}
		err = conn.Where("slug = ?", seed.slug).
			Assign(map[string]any{
				"name":        seed.name,
				"base_url":    seed.baseURL,
				"credentials": credentials,
				"is_active":   true,
			}).
			FirstOrCreate(&sub).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}
