package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Crop represents a crop tracked in the crop catalog
type Crop struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url,omitempty"`
	WaterNeeds string    `json:"water_needs"`
	OptimalPh  string    `json:"optimal_ph"`
	Sunlight   string    `json:"sunlight"`
	Details    string    `json:"details,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Column limits of the crops table, in characters
const (
	MaxCropNameLen   = 100
	MaxWaterNeedsLen = 100
	MaxOptimalPhLen  = 50
	MaxSunlightLen   = 100
)

// Validate checks the fields a crop needs before it is stored
func (c *Crop) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("crop name is required")
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"crop name", c.Name, MaxCropNameLen},
		{"water needs", c.WaterNeeds, MaxWaterNeedsLen},
		{"optimal pH", c.OptimalPh, MaxOptimalPhLen},
		{"sunlight", c.Sunlight, MaxSunlightLen},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return fmt.Errorf("%s must be at most %d characters", l.field, l.max)
		}
	}
	return nil
}

// ApplyConditions copies AI suggested growing conditions onto the crop,
// truncating them to the column limits
func (c *Crop) ApplyConditions(oc OptimalConditions) {
	if oc.WaterNeeds != "" {
		c.WaterNeeds = truncate(oc.WaterNeeds, MaxWaterNeedsLen)
	}
	if oc.OptimalPh != "" {
		c.OptimalPh = truncate(oc.OptimalPh, MaxOptimalPhLen)
	}
	if oc.Sunlight != "" {
		c.Sunlight = truncate(oc.Sunlight, MaxSunlightLen)
	}
	if oc.AdditionalTips != "" {
		c.Details = oc.AdditionalTips
	}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

// DefaultCrops returns the crops the catalog is seeded with
func DefaultCrops() []Crop {
	return []Crop{
		{
			ID:         1,
			Name:       "Tomatoes",
			ImageURL:   "https://upload.wikimedia.org/wikipedia/commons/thumb/8/88/Bright_red_tomato_and_cross_section02.jpg/320px-Bright_red_tomato_and_cross_section02.jpg",
			WaterNeeds: "High",
			OptimalPh:  "6.0-6.8",
			Sunlight:   "Full Sun",
		},
		{
			ID:         2,
			Name:       "Lettuce",
			ImageURL:   "https://upload.wikimedia.org/wikipedia/commons/thumb/2/20/Lettuce_Mini_Cos_A.jpg/320px-Lettuce_Mini_Cos_A.jpg",
			WaterNeeds: "Moderate",
			OptimalPh:  "6.0-7.0",
			Sunlight:   "Partial Shade",
		},
		{
			ID:         3,
			Name:       "Carrots",
			ImageURL:   "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a2/Vegetable-Carrot-Bundle-wStalks.jpg/320px-Vegetable-Carrot-Bundle-wStalks.jpg",
			WaterNeeds: "Moderate",
			OptimalPh:  "5.8-6.5",
			Sunlight:   "Full Sun",
		},
		{
			ID:         4,
			Name:       "Bell Peppers",
			ImageURL:   "https://upload.wikimedia.org/wikipedia/commons/thumb/e/e4/Sized_bell_peppers.jpg/320px-Sized_bell_peppers.jpg",
			WaterNeeds: "High",
			OptimalPh:  "5.5-6.5",
			Sunlight:   "Full Sun",
		},
	}
}

// OptimalConditions are the growing conditions suggested for a crop
type OptimalConditions struct {
	WaterNeeds     string `json:"waterNeeds"`
	OptimalPh      string `json:"optimalPh"`
	Sunlight       string `json:"sunlight"`
	AdditionalTips string `json:"additionalTips,omitempty"`
}

// CropRecommendation is one crop suggested for the current field conditions
type CropRecommendation struct {
	CropName               string `json:"cropName"`
	Reason                 string `json:"reason"`
	EstimatedGrowingPeriod string `json:"estimatedGrowingPeriod"`
}

// MonthlyValue is one month of a report series used for data insights
type MonthlyValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PestIncidence is one month of pest incidence used for data insights
type PestIncidence struct {
	Month         string  `json:"month"`
	IncidenceRate float64 `json:"incidenceRate"`
}
