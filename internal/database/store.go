package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
)

// CropStore implements the crop catalog on PostgreSQL
type CropStore struct {
	db *sql.DB
}

// NewCropStore creates a new crop store
func NewCropStore(db *sql.DB) *CropStore {
	return &CropStore{db: db}
}

// Ping checks the database connection
func (s *CropStore) Ping() error {
	return s.db.Ping()
}

const cropColumns = `id, name, image_url, water_needs, optimal_ph, sunlight, details, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCrop(row rowScanner) (models.Crop, error) {
	var c models.Crop
	err := row.Scan(&c.ID, &c.Name, &c.ImageURL, &c.WaterNeeds, &c.OptimalPh, &c.Sunlight, &c.Details, &c.UpdatedAt)
	return c, err
}

// CreateCrop inserts a crop and sets its id
func (s *CropStore) CreateCrop(crop *models.Crop) error {
	if err := crop.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO crops (name, image_url, water_needs, optimal_ph, sunlight, details, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, updated_at`

	err := s.db.QueryRow(query, crop.Name, crop.ImageURL, crop.WaterNeeds,
		crop.OptimalPh, crop.Sunlight, crop.Details).Scan(&crop.ID, &crop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create crop: %w", err)
	}
	return nil
}

// GetCrop returns a crop by id
func (s *CropStore) GetCrop(id int) (*models.Crop, error) {
	row := s.db.QueryRow(`SELECT `+cropColumns+` FROM crops WHERE id = $1`, id)

	crop, err := scanCrop(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCropNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crop %d: %w", id, err)
	}
	return &crop, nil
}

// GetAllCrops returns every crop ordered by id
func (s *CropStore) GetAllCrops() ([]models.Crop, error) {
	rows, err := s.db.Query(`SELECT ` + cropColumns + ` FROM crops ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	defer rows.Close()

	crops := []models.Crop{}
	for rows.Next() {
		crop, err := scanCrop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crop: %w", err)
		}
		crops = append(crops, crop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	return crops, nil
}

// UpdateCrop replaces the editable fields of an existing crop
func (s *CropStore) UpdateCrop(crop *models.Crop) error {
	if err := crop.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE crops SET
			name = $2,
			image_url = $3,
			water_needs = $4,
			optimal_ph = $5,
			sunlight = $6,
			details = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := s.db.QueryRow(query, crop.ID, crop.Name, crop.ImageURL, crop.WaterNeeds,
		crop.OptimalPh, crop.Sunlight, crop.Details).Scan(&crop.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrCropNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update crop %d: %w", crop.ID, err)
	}
	return nil
}

// DeleteCrop removes a crop
func (s *CropStore) DeleteCrop(id int) error {
	result, err := s.db.Exec(`DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete crop %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete crop %d: %w", id, err)
	}
	if affected == 0 {
		return store.ErrCropNotFound
	}
	return nil
}

// HybridStore keeps snapshots in memory and the crop catalog in PostgreSQL
type HybridStore struct {
	store.SnapshotStore
	store.CropStore
}

// NewHybridStore combines a snapshot store with a crop store
func NewHybridStore(snapshots store.SnapshotStore, crops store.CropStore) *HybridStore {
	return &HybridStore{SnapshotStore: snapshots, CropStore: crops}
}
