package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/advisory"
	"github.com/Capstone-E1/agrismart_backend/internal/export"
	"github.com/Capstone-E1/agrismart_backend/internal/i18n"
	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/services"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/go-chi/chi/v5"
)

// Refresher triggers an immediate poll
type Refresher interface {
	PollOnce(ctx context.Context) (*models.Snapshot, error)
	IsRunning() bool
}

// Locale is the translator as seen by the HTTP layer
type Locale interface {
	Load(lang string) error
	Language() string
	T(key string, replacements map[string]interface{}) string
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	store         store.DataStore
	poller        Refresher
	advisor       *advisory.Service
	locale        Locale
	exportService *export.ExportService
}

// NewHandlers creates a new handlers instance
func NewHandlers(dataStore store.DataStore, poller Refresher, advisor *advisory.Service, locale Locale) *Handlers {
	return &Handlers{
		store:         dataStore,
		poller:        poller,
		advisor:       advisor,
		locale:        locale,
		exportService: export.NewExportService(locale),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handlers) sendResponse(w http.ResponseWriter, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// sendAdvisoryError renders the localized message carried by advisory errors
func (h *Handlers) sendAdvisoryError(w http.ResponseWriter, err error) {
	var advErr *advisory.Error
	if !errors.As(err, &advErr) {
		h.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, advisory.ErrAPIKeyMissing), errors.Is(err, advisory.ErrSensorData):
		status = http.StatusServiceUnavailable
	}
	h.sendErrorResponse(w, advErr.Message, status)
}

func (h *Handlers) snapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap, ok := h.store.GetSnapshot()
	if !ok {
		h.sendErrorResponse(w, "No sensor data available yet", http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

// HealthCheck reports service and poller state
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := h.store.Ping(); err != nil {
		dbStatus = err.Error()
	}

	health := map[string]interface{}{
		"status":         "ok",
		"database":       dbStatus,
		"poller_running": h.poller.IsRunning(),
		"ai_available":   h.advisor.Available(),
		"language":       h.locale.Language(),
	}
	if snap, ok := h.store.GetSnapshot(); ok {
		health["live"] = snap.Live
		health["sequence"] = snap.Sequence
		health["last_poll"] = snap.FetchedAt
	}

	h.sendResponse(w, health, "")
}

// GetSensors returns the latest snapshot with every sensor view-model
func (h *Handlers) GetSensors(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	h.sendResponse(w, snap, "")
}

// GetSensor returns one sensor by id
func (h *Handlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sensor, ok := h.store.GetSensor(id)
	if !ok {
		h.sendErrorResponse(w, fmt.Sprintf("Sensor %s not found", id), http.StatusNotFound)
		return
	}
	h.sendResponse(w, sensor, "")
}

// GetSensorHistory returns the historical series of one sensor
func (h *Handlers) GetSensorHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sensor, ok := h.store.GetSensor(id)
	if !ok {
		h.sendErrorResponse(w, fmt.Sprintf("Sensor %s not found", id), http.StatusNotFound)
		return
	}
	h.sendResponse(w, map[string]interface{}{
		"id":             sensor.ID,
		"type":           sensor.Type,
		"unit":           sensor.Unit,
		"historicalData": sensor.HistoricalData,
	}, "")
}

// RefreshSensors polls ThingSpeak now instead of waiting for the next tick
func (h *Handlers) RefreshSensors(w http.ResponseWriter, r *http.Request) {
	snap, err := h.poller.PollOnce(r.Context())
	switch {
	case errors.Is(err, services.ErrPollerStopped):
		h.sendErrorResponse(w, "Poller is stopped", http.StatusServiceUnavailable)
		return
	case errors.Is(err, services.ErrStaleResult):
		latest, ok := h.snapshot(w)
		if !ok {
			return
		}
		h.sendResponse(w, latest, "A newer poll already completed")
		return
	case err != nil:
		log.Printf("⚠️  Refresh failed: %v", err)
		h.sendErrorResponse(w, "Failed to refresh sensor data", http.StatusInternalServerError)
		return
	}
	h.sendResponse(w, snap, "Sensor data refreshed")
}

// GetNPKBreakdown returns the per-nutrient classification of the NPK sensor
func (h *Handlers) GetNPKBreakdown(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}
	sensor, ok := snap.FindSensor(models.KindNPKSensor)
	if !ok {
		h.sendErrorResponse(w, "NPK sensor not configured", http.StatusNotFound)
		return
	}

	part := func(key string) *float64 {
		return sensor.CurrentValue.Parts[key].Number
	}
	breakdown := models.BreakdownNPK(part(models.PartNitrogen), part(models.PartPhosphorus), part(models.PartPotassium))

	h.sendResponse(w, map[string]interface{}{
		"id":        sensor.ID,
		"value":     sensor.CurrentValue,
		"unit":      sensor.Unit,
		"breakdown": breakdown,
		"thresholds": map[string]models.NutrientThresholds{
			models.PartNitrogen:   models.NitrogenThresholds,
			models.PartPhosphorus: models.PhosphorusThresholds,
			models.PartPotassium:  models.PotassiumThresholds,
		},
	}, "")
}

// GetLanguage returns the active and supported languages
func (h *Handlers) GetLanguage(w http.ResponseWriter, r *http.Request) {
	h.sendResponse(w, map[string]interface{}{
		"language":  h.locale.Language(),
		"supported": i18n.SupportedLanguages,
	}, "")
}

// SetLanguage switches the process-wide locale
func (h *Handlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if !i18n.IsSupported(request.Language) {
		h.sendErrorResponse(w, fmt.Sprintf("Unsupported language %q", request.Language), http.StatusBadRequest)
		return
	}

	message := "Language updated"
	if err := h.locale.Load(request.Language); err != nil {
		log.Printf("⚠️  Language switch to %s degraded: %v", request.Language, err)
		message = "Requested locale unavailable, using fallback"
	}
	h.sendResponse(w, map[string]string{"language": h.locale.Language()}, message)
}

// ExportSensorsExcel streams the current snapshot as an xlsx workbook
func (h *Handlers) ExportSensorsExcel(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	now := time.Now()
	excelFile, err := h.exportService.GenerateExcel(export.ExportData{Snapshot: snap, GeneratedAt: now})
	if err != nil {
		log.Printf("⚠️  Excel export failed: %v", err)
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer excelFile.Close()

	filename := fmt.Sprintf("agrismart_sensors_%s.xlsx", now.Format("2006-01-02_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := excelFile.Write(w); err != nil {
		log.Printf("⚠️  Failed to write Excel file: %v", err)
	}
}

// ExportSensorsCSV streams the current readings as CSV
func (h *Handlers) ExportSensorsCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	records, err := h.exportService.GenerateCSV(snap)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate CSV", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("agrismart_sensors_%s.csv", time.Now().Format("2006-01-02_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	writer := csv.NewWriter(w)
	if err := h.exportService.WriteCSV(writer, records); err != nil {
		log.Printf("⚠️  Failed to write CSV: %v", err)
	}
}
