package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/Capstone-E1/agrismart_backend/config"
	_ "github.com/lib/pq"
)

// DB holds the database connection
type DB struct {
	*sql.DB
}

// Connect establishes connection to PostgreSQL database
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr != "" {
		log.Println("Using DATABASE_URL from environment")
	} else {
		connStr = BuildConnectionString(cfg)
		log.Printf("Connecting to database at %s:%s/%s", cfg.Host, cfg.Port, cfg.DBName)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The crop catalog is small and low traffic
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	log.Println("Successfully connected to PostgreSQL database")

	return &DB{db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// BuildConnectionString builds a PostgreSQL connection string
func BuildConnectionString(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	conn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, sslMode)
	if cfg.Password != "" {
		conn += fmt.Sprintf(" password='%s'", escapeConnValue(cfg.Password))
	}
	return conn
}

func escapeConnValue(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		if r == '\\' || r == '\'' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
