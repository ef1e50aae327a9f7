package main

import (
	"flag"
	"log"

	"github.com/Capstone-E1/agrismart_backend/config"
	"github.com/Capstone-E1/agrismart_backend/internal/database"
	"github.com/joho/godotenv"
)

func main() {
	confirm := flag.Bool("yes", false, "Confirm dropping the crop catalog")
	flag.Parse()

	if !*confirm {
		log.Fatalln("❌ Refusing to reset without -yes; this deletes every stored crop")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: .env file not found")
	}
	cfg := config.Load()

	log.Println("🔄 Connecting to database...")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer db.Close()

	log.Println("🗑️  Dropping all tables...")
	if err := database.DropTables(db.DB); err != nil {
		log.Fatalf("❌ Failed to drop tables: %v", err)
	}

	log.Println("🏗️  Recreating tables...")
	if err := database.CreateTables(db.DB); err != nil {
		log.Fatalf("❌ Failed to create tables: %v", err)
	}

	log.Println("")
	log.Println("✅ Database reset complete!")
	log.Println("🚀 The crop catalog holds the default crops again")
}
