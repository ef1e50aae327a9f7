package http

import (
	"github.com/Capstone-E1/agrismart_backend/internal/advisory"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/Capstone-E1/agrismart_backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all HTTP routes for the sensor dashboard API
func SetupRoutes(dataStore store.DataStore, wsHub *ws.Hub, poller Refresher, advisor *advisory.Service, locale Locale, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers := NewHandlers(dataStore, poller, advisor, locale)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", handlers.GetSensors)
			r.Post("/refresh", handlers.RefreshSensors)
			r.Get("/npk", handlers.GetNPKBreakdown)
			r.Get("/{id}", handlers.GetSensor)
			r.Get("/{id}/history", handlers.GetSensorHistory)
		})

		r.Route("/advice", func(r chi.Router) {
			r.Get("/farming", handlers.GetFarmingAdvice)
			r.Post("/recommendations", handlers.GetCropRecommendations)
			r.Post("/insights", handlers.GetDataInsights)
		})

		r.Route("/crops", func(r chi.Router) {
			r.Get("/", handlers.GetAllCrops)
			r.Post("/", handlers.CreateCrop)
			r.Get("/{id}", handlers.GetCrop)
			r.Put("/{id}", handlers.UpdateCrop)
			r.Delete("/{id}", handlers.DeleteCrop)
			r.Get("/{id}/conditions", handlers.GetCropConditions)
			r.Post("/{id}/image", handlers.GenerateCropImage)
		})

		r.Get("/language", handlers.GetLanguage)
		r.Put("/language", handlers.SetLanguage)

		r.Route("/export", func(r chi.Router) {
			r.Get("/sensors.xlsx", handlers.ExportSensorsExcel)
			r.Get("/sensors.csv", handlers.ExportSensorsCSV)
		})
	})

	// WebSocket route for real-time updates
	r.HandleFunc("/ws", wsHub.HandleWebSocket)

	return r
}
