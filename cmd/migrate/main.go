package main

import (
	"flag"
	"log"
	"os"

	"github.com/Capstone-E1/agrismart_backend/config"
	"github.com/Capstone-E1/agrismart_backend/internal/database"
	"github.com/joho/godotenv"
)

func main() {
	var (
		drop   = flag.Bool("drop", false, "Drop all tables before creating")
		create = flag.Bool("create", true, "Create tables and seed the default crops")
		seed   = flag.Bool("seed", false, "Re-insert any missing default crops")
		check  = flag.Bool("check", false, "Check if tables exist")
	)
	flag.Parse()

	log.Println("🏗️  AgriSmart Database Migration Tool")
	log.Println("=====================================")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: .env file not found")
	}
	cfg := config.Load()

	if os.Getenv("DATABASE_URL") == "" && cfg.Database.Password == "" {
		log.Println("⚠️  Database credentials not configured. Please set DATABASE_URL or:")
		log.Println("   DB_HOST=your-host")
		log.Println("   DB_PORT=5432")
		log.Println("   DB_USER=your-username")
		log.Println("   DB_PASSWORD=your-password")
		log.Println("   DB_NAME=agrismart")
		log.Println("   DB_SSLMODE=require")
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("✅ Connected to database: %s@%s:%s/%s",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if *drop {
		log.Println("🗑️  Dropping existing tables...")
		if err := database.DropTables(db.DB); err != nil {
			log.Fatalf("❌ Failed to drop tables: %v", err)
		}
	}

	if *create {
		log.Println("🏗️  Creating database tables...")
		if err := database.CreateTables(db.DB); err != nil {
			log.Fatalf("❌ Failed to create tables: %v", err)
		}
	}

	if *seed {
		log.Println("🌱 Seeding default crops...")
		if err := database.SeedCrops(db.DB); err != nil {
			log.Fatalf("❌ Failed to seed crops: %v", err)
		}
	}

	if *check {
		log.Println("🔍 Checking if tables exist...")
		if err := database.CheckTablesExist(db.DB); err != nil {
			log.Fatalf("❌ Table check failed: %v", err)
		}
	}

	log.Println("🎉 Database migration completed successfully!")
}
