package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCropValidate(t *testing.T) {
	tests := []struct {
		name    string
		crop    Crop
		wantErr bool
	}{
		{"valid", Crop{Name: "Okra", WaterNeeds: "Moderate", OptimalPh: "6.0-6.8", Sunlight: "Full Sun"}, false},
		{"empty name", Crop{Name: "  "}, true},
		{"long name", Crop{Name: strings.Repeat("a", MaxCropNameLen+1)}, true},
		{"long water needs", Crop{Name: "Okra", WaterNeeds: strings.Repeat("w", MaxWaterNeedsLen+1)}, true},
		{"long optimal pH", Crop{Name: "Okra", OptimalPh: strings.Repeat("6", 60)}, true},
		{"long sunlight", Crop{Name: "Okra", Sunlight: strings.Repeat("s", MaxSunlightLen+1)}, true},
		{"pH at limit", Crop{Name: "Okra", OptimalPh: strings.Repeat("6", MaxOptimalPhLen)}, false},
		{"multibyte name at limit", Crop{Name: strings.Repeat("බ", MaxCropNameLen)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.crop.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCropApplyConditions(t *testing.T) {
	crop := Crop{Name: "Tomatoes", WaterNeeds: "High", OptimalPh: "6.0-6.8", Sunlight: "Full Sun"}

	crop.ApplyConditions(OptimalConditions{
		OptimalPh:      "Slightly acidic, ideally between 6.0 and 6.8, measured with a calibrated meter",
		Sunlight:       "Partial Shade",
		AdditionalTips: "Mulch well.",
	})

	if err := crop.Validate(); err != nil {
		t.Fatalf("Expected applied conditions to stay valid, got %v", err)
	}
	if n := utf8.RuneCountInString(crop.OptimalPh); n > MaxOptimalPhLen {
		t.Errorf("Expected optimal pH truncated to %d, got %d", MaxOptimalPhLen, n)
	}
	if !strings.HasPrefix(crop.OptimalPh, "Slightly acidic") {
		t.Errorf("Unexpected optimal pH %q", crop.OptimalPh)
	}
	if crop.WaterNeeds != "High" {
		t.Errorf("Expected empty suggestion to keep water needs, got %q", crop.WaterNeeds)
	}
	if crop.Sunlight != "Partial Shade" || crop.Details != "Mulch well." {
		t.Errorf("Unexpected crop %+v", crop)
	}
}
