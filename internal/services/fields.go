package services

import (
	"fmt"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/thingspeak"
)

// FieldBinding maps a sensor kind, or one sub-reading of a composite kind, to
// a channel field index (1-based)
type FieldBinding struct {
	Kind  models.SensorKind
	Part  string
	Index int
}

// FieldTable is the static kind to field mapping of the channel
type FieldTable []FieldBinding

// DefaultFieldTable returns the field layout written by the field station
func DefaultFieldTable() FieldTable {
	return FieldTable{
		{Kind: models.KindTemperature, Index: 1},
		{Kind: models.KindHumidity, Index: 2},
		{Kind: models.KindSoilTemperature, Index: 3},
		{Kind: models.KindSoilMoisture, Index: 4},
		{Kind: models.KindLightIntensity, Index: 5},
		{Kind: models.KindNPKSensor, Part: models.PartNitrogen, Index: 6},
		{Kind: models.KindNPKSensor, Part: models.PartPhosphorus, Index: 7},
		{Kind: models.KindNPKSensor, Part: models.PartPotassium, Index: 8},
	}
}

// ChartableKinds are the kinds that get a historical series
var ChartableKinds = []models.SensorKind{
	models.KindTemperature,
	models.KindHumidity,
	models.KindSoilTemperature,
	models.KindSoilMoisture,
	models.KindLightIntensity,
	models.KindNPKSensor,
}

// IsChartable reports whether kind gets a historical series
func IsChartable(kind models.SensorKind) bool {
	for _, k := range ChartableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate checks the table: indices in range and unused twice, parts only on
// composite kinds, and every chartable kind mapped
func (t FieldTable) Validate() error {
	indices := make(map[int]FieldBinding)
	bound := make(map[string]bool)
	mapped := make(map[models.SensorKind]bool)

	for _, b := range t {
		if !b.Kind.IsValid() {
			return fmt.Errorf("field %d: unknown sensor kind %q", b.Index, b.Kind)
		}
		if b.Index < 1 || b.Index > thingspeak.FieldCount {
			return fmt.Errorf("%s: field index %d out of range 1..%d", b.Kind, b.Index, thingspeak.FieldCount)
		}
		if prev, ok := indices[b.Index]; ok {
			return fmt.Errorf("field%d bound to both %s and %s", b.Index, prev.Kind, b.Kind)
		}
		indices[b.Index] = b

		if b.Kind.IsComposite() {
			if !hasPart(models.CompositeParts(b.Kind), b.Part) {
				return fmt.Errorf("%s: unknown part %q", b.Kind, b.Part)
			}
		} else if b.Part != "" {
			return fmt.Errorf("%s: scalar kind cannot bind part %q", b.Kind, b.Part)
		}

		key := string(b.Kind) + "/" + b.Part
		if bound[key] {
			return fmt.Errorf("%s %s bound twice", b.Kind, b.Part)
		}
		bound[key] = true
		mapped[b.Kind] = true
	}

	for _, kind := range ChartableKinds {
		if !mapped[kind] {
			return fmt.Errorf("chartable kind %s has no field", kind)
		}
	}
	return nil
}

// Index returns the field index of a scalar kind or composite part
func (t FieldTable) Index(kind models.SensorKind, part string) (int, bool) {
	for _, b := range t {
		if b.Kind == kind && b.Part == part {
			return b.Index, true
		}
	}
	return 0, false
}

func hasPart(parts []string, part string) bool {
	for _, p := range parts {
		if p == part {
			return true
		}
	}
	return false
}
