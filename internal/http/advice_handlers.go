package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

// GetFarmingAdvice builds advice from the current temperature and
// soil-moisture status
func (h *Handlers) GetFarmingAdvice(w http.ResponseWriter, r *http.Request) {
	crop := strings.TrimSpace(r.URL.Query().Get("crop"))

	snap, _ := h.store.GetSnapshot()
	advice, err := h.advisor.SnapshotAdvice(r.Context(), crop, snap)
	if err != nil {
		h.sendAdvisoryError(w, err)
		return
	}
	h.sendResponse(w, map[string]string{"advice": advice}, "")
}

// GetCropRecommendations suggests crops for the posted field conditions
func (h *Handlers) GetCropRecommendations(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Temperature *float64 `json:"temperature"`
		Moisture    *float64 `json:"moisture"`
		Ph          *float64 `json:"ph"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if request.Temperature == nil || request.Moisture == nil || request.Ph == nil {
		h.sendErrorResponse(w, "temperature, moisture and ph are required", http.StatusBadRequest)
		return
	}
	if *request.Ph < 0 || *request.Ph > 14 {
		h.sendErrorResponse(w, "ph must be between 0 and 14", http.StatusBadRequest)
		return
	}

	recs, err := h.advisor.CropRecommendations(r.Context(), *request.Temperature, *request.Moisture, *request.Ph)
	if err != nil {
		h.sendAdvisoryError(w, err)
		return
	}
	h.sendResponse(w, recs, "")
}

// GetDataInsights analyses posted monthly yield, moisture and pest data
func (h *Handlers) GetDataInsights(w http.ResponseWriter, r *http.Request) {
	var request struct {
		YieldData    []models.MonthlyValue  `json:"yieldData"`
		MoistureData []models.MonthlyValue  `json:"moistureData"`
		PestData     []models.PestIncidence `json:"pestData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(request.YieldData) == 0 && len(request.MoistureData) == 0 {
		h.sendErrorResponse(w, "yieldData or moistureData is required", http.StatusBadRequest)
		return
	}

	insights, err := h.advisor.DataInsights(r.Context(), request.YieldData, request.MoistureData, request.PestData)
	if err != nil {
		h.sendAdvisoryError(w, err)
		return
	}
	h.sendResponse(w, map[string]string{"insights": insights}, "")
}
