package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

// Tables managed by the migration tools, in drop order
var managedTables = []string{"crops"}

// resetCropSequenceSQL points the id sequence at MAX(id)+1, or 1 on an empty
// table, without marking that value as used
const resetCropSequenceSQL = `SELECT setval(pg_get_serial_sequence('crops', 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM crops), false);`

// CreateTables creates the crop catalog schema and seeds the default crops
func CreateTables(db *sql.DB) error {
	log.Println("Creating database tables...")

	cropsTable := `
	CREATE TABLE IF NOT EXISTS crops (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		water_needs VARCHAR(100) NOT NULL DEFAULT '',
		optimal_ph VARCHAR(50) NOT NULL DEFAULT '',
		sunlight VARCHAR(100) NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`

	if _, err := db.Exec(cropsTable); err != nil {
		return fmt.Errorf("failed to create crops table: %w", err)
	}

	if err := SeedCrops(db); err != nil {
		log.Printf("Warning: Failed to seed default crops: %v", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_crops_name ON crops(LOWER(name));"); err != nil {
		log.Printf("Warning: Failed to create index: %v", err)
	}

	log.Println("✅ Database tables created successfully")
	return nil
}

// SeedCrops inserts the default crops with their fixed ids and sets the id
// sequence so the next insert gets MAX(id)+1
func SeedCrops(db *sql.DB) error {
	query := `
	INSERT INTO crops (id, name, image_url, water_needs, optimal_ph, sunlight)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO NOTHING;`

	for _, c := range models.DefaultCrops() {
		if _, err := db.Exec(query, c.ID, c.Name, c.ImageURL, c.WaterNeeds, c.OptimalPh, c.Sunlight); err != nil {
			return fmt.Errorf("failed to seed crop %s: %w", c.Name, err)
		}
	}

	if _, err := db.Exec(resetCropSequenceSQL); err != nil {
		return fmt.Errorf("failed to advance crop id sequence: %w", err)
	}
	return nil
}

// DropTables drops all tables (useful for testing)
func DropTables(db *sql.DB) error {
	log.Println("Dropping database tables...")

	for _, table := range managedTables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", table)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ Database tables dropped successfully")
	return nil
}

// CheckTablesExist checks if all required tables exist
func CheckTablesExist(db *sql.DB) error {
	for _, table := range managedTables {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		);`

		if err := db.QueryRow(query, table).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}

		if !exists {
			return fmt.Errorf("table %s does not exist", table)
		}
	}

	log.Println("✅ All required tables exist")
	return nil
}
