package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Capstone-E1/agrismart_backend/config"
	"github.com/Capstone-E1/agrismart_backend/internal/advisory"
	"github.com/Capstone-E1/agrismart_backend/internal/database"
	httphandlers "github.com/Capstone-E1/agrismart_backend/internal/http"
	"github.com/Capstone-E1/agrismart_backend/internal/i18n"
	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/mqtt"
	"github.com/Capstone-E1/agrismart_backend/internal/services"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/Capstone-E1/agrismart_backend/internal/thingspeak"
	"github.com/Capstone-E1/agrismart_backend/internal/ws"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("🌱 Starting AgriSmart Field Monitoring Backend...")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found: %v", err)
	} else {
		log.Println("✅ Loaded .env file")
	}

	cfg := config.Load()
	log.Printf("📋 Loaded configuration: Server port=%s, ThingSpeak channel=%s, language=%s",
		cfg.Server.Port, cfg.ThingSpeak.ChannelID, cfg.Locale.Language)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Locale
	translator := i18n.New(cfg.Locale.Dir)
	if err := translator.Load(cfg.Locale.Language); err != nil {
		log.Printf("⚠️  Warning: Failed to load locale %q, using %q: %v",
			cfg.Locale.Language, translator.Language(), err)
	}
	log.Printf("🌐 Locale loaded: %s", translator.Language())

	// Snapshots always live in memory; the crop catalog uses PostgreSQL when enabled
	memStore := store.NewStore()
	var dataStore store.DataStore = memStore

	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to connect to database: %v", err)
			log.Println("📱 Falling back to in-memory crop catalog")
		} else {
			defer db.Close()
			if err := database.CreateTables(db.DB); err != nil {
				log.Fatalf("❌ Failed to run migrations: %v", err)
			}
			dataStore = database.NewHybridStore(memStore, database.NewCropStore(db.DB))
			log.Println("💾 Crop catalog backed by PostgreSQL")
		}
	} else {
		log.Println("💾 Using in-memory crop catalog")
	}

	// Telemetry pipeline
	feedClient := thingspeak.NewClient(&thingspeak.Config{
		BaseURL:    cfg.ThingSpeak.BaseURL,
		ChannelID:  cfg.ThingSpeak.ChannelID,
		ReadAPIKey: cfg.ThingSpeak.ReadAPIKey,
		Timeout:    cfg.ThingSpeak.Timeout,
	})
	if !feedClient.Configured() {
		log.Println("⚠️  ThingSpeak channel not configured, sensors will report N/A")
	}

	mapper, err := services.NewMapper(services.DefaultFieldTable())
	if err != nil {
		log.Fatalf("❌ Invalid field table: %v", err)
	}

	poller := services.NewPoller(feedClient, mapper, models.DefaultTemplate(), memStore, translator, services.PollerConfig{
		Interval:       cfg.Polling.Interval,
		InitialResults: cfg.Polling.InitialResults,
		PollResults:    cfg.Polling.PollResults,
		FetchTimeout:   cfg.Polling.FetchTimeout,
	})

	// WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	poller.AddListener(wsHub)
	log.Println("🔌 Started WebSocket hub")

	// MQTT bridge
	if cfg.MQTT.Enabled {
		mqttClient := mqtt.NewClient(&mqtt.Config{
			BrokerURL:    cfg.MQTT.BrokerURL,
			ClientID:     cfg.MQTT.ClientID,
			Username:     cfg.MQTT.Username,
			Password:     cfg.MQTT.Password,
			TopicPrefix:  cfg.MQTT.TopicPrefix,
			QoS:          cfg.MQTT.QoS,
			KeepAlive:    cfg.MQTT.KeepAlive,
			PingTimeout:  cfg.MQTT.PingTimeout,
			ConnectRetry: cfg.MQTT.ConnectRetry,
		})
		mqttClient.SetCommandHandler(func(command string) {
			if command != mqtt.CommandRefresh {
				log.Printf("⚠️  Ignoring unknown MQTT command %q", command)
				return
			}
			if _, err := poller.PollOnce(ctx); err != nil {
				log.Printf("⚠️  MQTT refresh failed: %v", err)
			}
		})
		mqttClient.SetErrorHandler(func(err error) {
			wsHub.BroadcastError(err.Error())
		})

		if err := mqttClient.Connect(); err != nil {
			log.Printf("⚠️  Warning: Failed to connect to MQTT broker: %v", err)
			log.Println("📡 Continuing without MQTT support")
		} else {
			if err := mqttClient.SubscribeToCommands(); err != nil {
				log.Printf("⚠️  Warning: Failed to subscribe to commands: %v", err)
			}
			poller.AddListener(mqttClient)
			defer mqttClient.Disconnect()
			log.Printf("📡 MQTT bridge connected - Broker: %s", cfg.MQTT.BrokerURL)
		}
	} else {
		log.Println("📡 MQTT disabled, skipping MQTT initialization")
	}

	// AI advisory
	var generator advisory.Generator
	gemini, err := advisory.NewGeminiGenerator(ctx, &advisory.Config{
		APIKey:     cfg.AI.APIKey,
		TextModel:  cfg.AI.TextModel,
		ImageModel: cfg.AI.ImageModel,
		Timeout:    cfg.AI.Timeout,
	})
	if err != nil {
		log.Printf("⚠️  AI advisory unavailable: %v", err)
	} else {
		generator = gemini
		log.Println("🤖 AI advisory client initialized")
	}
	advisor := advisory.NewService(generator, translator)

	poller.Start(ctx)

	router := httphandlers.SetupRoutes(dataStore, wsHub, poller, advisor, translator, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("🚀 Starting HTTP server on port %s", cfg.Server.Port)
		log.Println("📡 API endpoints available:")
		log.Println("  GET  /api/v1/sensors - Current sensor snapshot")
		log.Println("  GET  /api/v1/sensors/{id} - One sensor")
		log.Println("  GET  /api/v1/sensors/{id}/history - Sensor history")
		log.Println("  POST /api/v1/sensors/refresh - Poll ThingSpeak now")
		log.Println("  GET  /api/v1/sensors/npk - NPK breakdown")
		log.Println("  GET  /api/v1/advice/farming?crop= - Farming advice")
		log.Println("  POST /api/v1/advice/recommendations - Crop recommendations")
		log.Println("  POST /api/v1/advice/insights - Data insights")
		log.Println("  GET  /api/v1/crops - Crop catalog")
		log.Println("  GET  /api/v1/crops/{id}/conditions - AI optimal conditions")
		log.Println("  POST /api/v1/crops/{id}/image - AI crop image")
		log.Println("  GET  /api/v1/language - Active language")
		log.Println("  GET  /api/v1/export/sensors.xlsx - Export to Excel")
		log.Println("  GET  /api/v1/export/sensors.csv - Export to CSV")
		log.Println("  WS   /ws - WebSocket for real-time updates")
		log.Printf("🌐 Server running at http://localhost:%s", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server shutdown complete")
}
