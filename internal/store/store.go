package store

import (
	"sort"
	"sync"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

// Store keeps the latest sensor snapshot and an in-memory crop catalog
type Store struct {
	mu         sync.RWMutex
	snapshot   *models.Snapshot
	crops      map[int]models.Crop
	nextCropID int
}

// NewStore creates an in-memory store seeded with the default crops
func NewStore() *Store {
	s := &Store{
		crops:      make(map[int]models.Crop),
		nextCropID: 1,
	}

	now := time.Now()
	for _, crop := range models.DefaultCrops() {
		crop.UpdatedAt = now
		s.crops[crop.ID] = crop
		if crop.ID >= s.nextCropID {
			s.nextCropID = crop.ID + 1
		}
	}
	return s
}

// Ping always succeeds for the in-memory store
func (s *Store) Ping() error {
	return nil
}

// ReplaceSnapshot stores snap if it is newer than the held snapshot
func (s *Store) ReplaceSnapshot(snap *models.Snapshot) (*models.Snapshot, bool) {
	if snap == nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot
	if prev != nil && snap.Sequence <= prev.Sequence {
		return prev, false
	}
	s.snapshot = snap
	return prev, true
}

// GetSnapshot returns the latest snapshot. Snapshots are never mutated after
// being stored, so the pointer can be shared.
func (s *Store) GetSnapshot() (*models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, false
	}
	return s.snapshot, true
}

// GetSensor returns one sensor of the latest snapshot
func (s *Store) GetSensor(id string) (*models.SensorReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, false
	}
	for i := range s.snapshot.Sensors {
		if s.snapshot.Sensors[i].ID == id {
			sensor := s.snapshot.Sensors[i]
			return &sensor, true
		}
	}
	return nil, false
}

// CreateCrop adds a crop and assigns its id
func (s *Store) CreateCrop(crop *models.Crop) error {
	if err := crop.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	crop.ID = s.nextCropID
	crop.UpdatedAt = time.Now()
	s.nextCropID++
	s.crops[crop.ID] = *crop
	return nil
}

// GetCrop returns a crop by id
func (s *Store) GetCrop(id int) (*models.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	crop, ok := s.crops[id]
	if !ok {
		return nil, ErrCropNotFound
	}
	return &crop, nil
}

// GetAllCrops returns every crop ordered by id
func (s *Store) GetAllCrops() ([]models.Crop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	crops := make([]models.Crop, 0, len(s.crops))
	for _, crop := range s.crops {
		crops = append(crops, crop)
	}
	sort.Slice(crops, func(i, j int) bool {
		return crops[i].ID < crops[j].ID
	})
	return crops, nil
}

// UpdateCrop replaces an existing crop
func (s *Store) UpdateCrop(crop *models.Crop) error {
	if err := crop.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.crops[crop.ID]; !ok {
		return ErrCropNotFound
	}
	crop.UpdatedAt = time.Now()
	s.crops[crop.ID] = *crop
	return nil
}

// DeleteCrop removes a crop
func (s *Store) DeleteCrop(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.crops[id]; !ok {
		return ErrCropNotFound
	}
	delete(s.crops, id)
	return nil
}
