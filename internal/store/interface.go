package store

import (
	"errors"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

// ErrCropNotFound is returned when a crop id does not exist
var ErrCropNotFound = errors.New("crop not found")

// SnapshotStore holds the latest sensor snapshot built by the poller
type SnapshotStore interface {
	// ReplaceSnapshot swaps in snap unless a snapshot with an equal or higher
	// sequence is already held. It returns the replaced snapshot.
	ReplaceSnapshot(snap *models.Snapshot) (prev *models.Snapshot, ok bool)
	GetSnapshot() (*models.Snapshot, bool)
	GetSensor(id string) (*models.SensorReading, bool)
}

// CropStore defines the crop catalog operations
type CropStore interface {
	// Health check
	Ping() error

	CreateCrop(*models.Crop) error
	GetCrop(int) (*models.Crop, error)
	GetAllCrops() ([]models.Crop, error)
	UpdateCrop(*models.Crop) error
	DeleteCrop(int) error
}

// DataStore is everything the HTTP layer reads and writes
type DataStore interface {
	SnapshotStore
	CropStore
}
