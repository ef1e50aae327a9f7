package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/go-chi/chi/v5"
)

func (h *Handlers) cropFromPath(w http.ResponseWriter, r *http.Request) (*models.Crop, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.sendErrorResponse(w, "Invalid crop ID", http.StatusBadRequest)
		return nil, false
	}

	crop, err := h.store.GetCrop(id)
	if err != nil {
		h.sendCropError(w, err)
		return nil, false
	}
	return crop, true
}

func (h *Handlers) sendCropError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrCropNotFound) {
		h.sendErrorResponse(w, "Crop not found", http.StatusNotFound)
		return
	}
	log.Printf("⚠️  Crop store error: %v", err)
	h.sendErrorResponse(w, "Crop store unavailable", http.StatusInternalServerError)
}

// GetAllCrops lists the crop catalog
func (h *Handlers) GetAllCrops(w http.ResponseWriter, r *http.Request) {
	crops, err := h.store.GetAllCrops()
	if err != nil {
		h.sendCropError(w, err)
		return
	}
	h.sendResponse(w, crops, "")
}

// GetCrop returns one crop
func (h *Handlers) GetCrop(w http.ResponseWriter, r *http.Request) {
	crop, ok := h.cropFromPath(w, r)
	if !ok {
		return
	}
	h.sendResponse(w, crop, "")
}

// CreateCrop adds a crop to the catalog
func (h *Handlers) CreateCrop(w http.ResponseWriter, r *http.Request) {
	var crop models.Crop
	if err := json.NewDecoder(r.Body).Decode(&crop); err != nil {
		h.sendErrorResponse(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if err := crop.Validate(); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	crop.ID = 0
	if err := h.store.CreateCrop(&crop); err != nil {
		h.sendCropError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Message: "Crop created", Data: crop})
}

// UpdateCrop replaces the editable fields of a crop
func (h *Handlers) UpdateCrop(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.cropFromPath(w, r)
	if !ok {
		return
	}

	var crop models.Crop
	if err := json.NewDecoder(r.Body).Decode(&crop); err != nil {
		h.sendErrorResponse(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	crop.ID = existing.ID
	if err := crop.Validate(); err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateCrop(&crop); err != nil {
		h.sendCropError(w, err)
		return
	}
	h.sendResponse(w, crop, "Crop updated")
}

// DeleteCrop removes a crop
func (h *Handlers) DeleteCrop(w http.ResponseWriter, r *http.Request) {
	crop, ok := h.cropFromPath(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteCrop(crop.ID); err != nil {
		h.sendCropError(w, err)
		return
	}
	h.sendResponse(w, nil, "Crop deleted")
}

// GetCropConditions asks the AI for the optimal conditions of a crop.
// With ?apply=true the answer is saved onto the crop.
func (h *Handlers) GetCropConditions(w http.ResponseWriter, r *http.Request) {
	crop, ok := h.cropFromPath(w, r)
	if !ok {
		return
	}

	conditions, err := h.advisor.CropOptimalConditions(r.Context(), crop.Name)
	if err != nil {
		h.sendAdvisoryError(w, err)
		return
	}

	if r.URL.Query().Get("apply") == "true" {
		crop.ApplyConditions(*conditions)
		if err := h.store.UpdateCrop(crop); err != nil {
			h.sendCropError(w, err)
			return
		}
		h.sendResponse(w, map[string]interface{}{"conditions": conditions, "crop": crop}, "Crop updated")
		return
	}
	h.sendResponse(w, map[string]interface{}{"conditions": conditions}, "")
}

// GenerateCropImage creates an AI picture of the crop and stores it as the
// crop's image
func (h *Handlers) GenerateCropImage(w http.ResponseWriter, r *http.Request) {
	crop, ok := h.cropFromPath(w, r)
	if !ok {
		return
	}

	uri, err := h.advisor.CropImage(r.Context(), crop.Name)
	if err != nil {
		h.sendAdvisoryError(w, err)
		return
	}

	crop.ImageURL = uri
	if err := h.store.UpdateCrop(crop); err != nil {
		h.sendCropError(w, err)
		return
	}
	h.sendResponse(w, map[string]interface{}{"id": crop.ID, "image_url": uri}, "Crop image generated")
}
