package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Capstone-E1/agrismart_backend/config"
	"github.com/Capstone-E1/agrismart_backend/internal/export"
	"github.com/Capstone-E1/agrismart_backend/internal/i18n"
	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/services"
	"github.com/Capstone-E1/agrismart_backend/internal/thingspeak"
	"github.com/joho/godotenv"
)

func main() {
	var (
		results = flag.Int("results", 20, "Number of feed records to fetch")
		lang    = flag.String("lang", "", "Display language (en, si, ta); defaults to LANGUAGE")
		asJSON  = flag.Bool("json", false, "Print the sensor view-models as JSON")
	)
	flag.Parse()

	log.Println("🔍 AgriSmart Feed Check")
	log.Println("======================")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: .env file not found")
	}
	cfg := config.Load()

	if *lang == "" {
		*lang = cfg.Locale.Language
	}
	translator := i18n.New(cfg.Locale.Dir)
	if err := translator.Load(*lang); err != nil {
		log.Printf("⚠️  Locale %q unavailable, using %q: %v", *lang, translator.Language(), err)
	}

	client := thingspeak.NewClient(&thingspeak.Config{
		BaseURL:    cfg.ThingSpeak.BaseURL,
		ChannelID:  cfg.ThingSpeak.ChannelID,
		ReadAPIKey: cfg.ThingSpeak.ReadAPIKey,
		Timeout:    cfg.ThingSpeak.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Polling.FetchTimeout)
	defer cancel()

	resp, err := client.Fetch(ctx, *results)
	if err != nil {
		log.Printf("⚠️  Fetch failed, every sensor will read N/A: %v", err)
		resp = nil
	} else {
		log.Printf("✅ Fetched %d records from channel %s", len(resp.Feeds), client.ChannelID())
	}

	mapper, err := services.NewMapper(services.DefaultFieldTable())
	if err != nil {
		log.Fatalf("❌ Invalid field table: %v", err)
	}
	readings := mapper.Map(resp, models.DefaultTemplate(), translator.T("common.na", nil))

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(readings); err != nil {
			log.Fatalf("❌ Failed to encode readings: %v", err)
		}
		return
	}

	printReadings(translator, readings)
}

func printReadings(tr *i18n.Translator, readings []models.SensorReading) {
	fmt.Printf("\n📊 Sensor Readings (%s):\n", tr.Language())
	fmt.Println("=====================================")
	fmt.Printf("%-4s %-22s %-40s %-28s %-8s %-7s\n",
		"ID", "Sensor", "Value", "Status", "Severity", "History")
	fmt.Println("--------------------------------------------------------------------------------------------------------------------")

	for _, r := range readings {
		fmt.Printf("%-4s %-22s %-40s %-28s %-8s %-7d\n",
			r.ID,
			tr.T("sensor."+string(r.Type), nil),
			export.FormatValue(r.CurrentValue, r.Unit, r.Type),
			statusLabel(tr, r.Status),
			r.Severity,
			len(r.HistoricalData))
	}

	if last := lastUpdate(readings); !last.IsZero() {
		fmt.Printf("\nLatest record: %s\n", last.Format(time.RFC3339))
	}
}

func statusLabel(tr *i18n.Translator, status models.Status) string {
	if status == nil {
		return tr.T("common.na", nil)
	}
	return tr.T("status."+status.Key(), nil)
}

func lastUpdate(readings []models.SensorReading) time.Time {
	var last time.Time
	for _, r := range readings {
		if n := len(r.HistoricalData); n > 0 && r.HistoricalData[n-1].Timestamp.After(last) {
			last = r.HistoricalData[n-1].Timestamp
		}
	}
	return last
}
