package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func f(v float64) *float64 { return &v }

func TestClassifySoilMoisture(t *testing.T) {
	tests := []struct {
		name     string
		value    *float64
		expected Status
	}{
		{"nil", nil, SoilMoistureNotAvailable},
		{"very dry", f(30000), SoilMoistureDry},
		{"just above optimal band", f(28000.0001), SoilMoistureDry},
		{"upper optimal boundary", f(28000), SoilMoistureOptimal},
		{"lower optimal boundary", f(20000), SoilMoistureOptimal},
		{"wet", f(19999), SoilMoistureWet},
		{"just above waterlogged", f(15000.0001), SoilMoistureWet},
		{"waterlogged boundary", f(15000), SoilMoistureWaterlogged},
		{"zero", f(0), SoilMoistureWaterlogged},
		{"NaN", f(math.NaN()), SoilMoistureNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySoilMoisture(tt.value)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScalarClassifiers(t *testing.T) {
	tests := []struct {
		name     string
		classify Classifier
		value    *float64
		expected Status
	}{
		{"temperature cold", ClassifyTemperature, f(24.9), TemperatureTooCold},
		{"temperature lower bound", ClassifyTemperature, f(25), TemperatureOptimal},
		{"temperature upper bound", ClassifyTemperature, f(32), TemperatureOptimal},
		{"temperature hot", ClassifyTemperature, f(32.1), TemperatureTooHot},
		{"temperature nil", ClassifyTemperature, nil, TemperatureNotAvailable},

		{"humidity dry", ClassifyHumidity, f(59), HumidityTooDry},
		{"humidity lower bound", ClassifyHumidity, f(60), HumidityOptimal},
		{"humidity upper bound", ClassifyHumidity, f(80), HumidityOptimal},
		{"humidity humid", ClassifyHumidity, f(80.5), HumidityTooHumid},
		{"humidity nil", ClassifyHumidity, nil, HumidityNotAvailable},

		{"soil temp cool", ClassifySoilTemperature, f(19.99), SoilTemperatureCool},
		{"soil temp lower bound", ClassifySoilTemperature, f(20), SoilTemperatureOptimal},
		{"soil temp upper bound", ClassifySoilTemperature, f(30), SoilTemperatureOptimal},
		{"soil temp stress", ClassifySoilTemperature, f(30.01), SoilTemperatureHeatStress},
		{"soil temp nil", ClassifySoilTemperature, nil, SoilTemperatureNotAvailable},

		{"light very dark", ClassifyLight, f(20001), LightVeryDark},
		{"light low boundary", ClassifyLight, f(20000), LightLow},
		{"light medium boundary", ClassifyLight, f(15000), LightMedium},
		{"light bright boundary", ClassifyLight, f(10000), LightBright},
		{"light nil", ClassifyLight, nil, LightNotAvailable},

		{"rain dry", ClassifyRain, f(28001), RainDry},
		{"rain light boundary", ClassifyRain, f(28000), RainLight},
		{"rain moderate boundary", ClassifyRain, f(25000), RainModerate},
		{"rain heavy boundary", ClassifyRain, f(20000), RainHeavy},
		{"rain nil", ClassifyRain, nil, RainNotAvailable},

		{"pressure low", ClassifyAirPressure, f(999.9), AirPressureLow},
		{"pressure lower bound", ClassifyAirPressure, f(1000), AirPressureNormal},
		{"pressure upper bound", ClassifyAirPressure, f(1025), AirPressureNormal},
		{"pressure high", ClassifyAirPressure, f(1025.1), AirPressureHigh},
		{"pressure nil", ClassifyAirPressure, nil, AirPressureNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.classify(tt.value)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestClassifyNilIsNotAvailableForEveryKind(t *testing.T) {
	for _, kind := range AllKinds {
		var got Status
		if kind.IsComposite() {
			got = ClassifyComposite(kind, map[string]*float64{})
		} else {
			got = Classify(kind, nil)
		}
		if got != NotAvailableStatus(kind) {
			t.Errorf("%s: expected %v, got %v", kind, NotAvailableStatus(kind), got)
		}
	}
}

func TestClassifiersAreTotal(t *testing.T) {
	inputs := []float64{-1e9, -1, 0, 0.5, 999, 1000, 15000, 20000, 25000, 28000, 1e9, math.Inf(1), math.Inf(-1), math.NaN()}
	for kind, c := range scalarClassifiers {
		for _, in := range inputs {
			v := in
			s := c(&v)
			if s == nil {
				t.Fatalf("%s: nil status for %v", kind, in)
			}
			if s.Key() == "" {
				t.Errorf("%s: empty status key for %v", kind, in)
			}
		}
	}
}

func TestDefaultTemplate(t *testing.T) {
	template := DefaultTemplate()
	if len(template) != len(AllKinds) {
		t.Fatalf("Expected %d template sensors, got %d", len(AllKinds), len(template))
	}

	seen := make(map[string]bool)
	for i, s := range template {
		if s.Type != AllKinds[i] {
			t.Errorf("Expected sensor %d to be %s, got %s", i, AllKinds[i], s.Type)
		}
		if seen[s.ID] {
			t.Errorf("Duplicate template id %s", s.ID)
		}
		seen[s.ID] = true
		if s.Type.IsComposite() && len(s.Unit.Parts) != 3 {
			t.Errorf("Expected composite %s to have 3 units, got %d", s.Type, len(s.Unit.Parts))
		}
	}
}

func TestSensorReadingJSON(t *testing.T) {
	reading := SensorReading{
		ID:           "10",
		Type:         KindNPKSensor,
		CurrentValue: CompositeValue(map[string]Scalar{PartNitrogen: ScalarOf(f(120), "N/A"), PartPhosphorus: ScalarOf(nil, "N/A")}),
		Unit:         Unit{Parts: map[string]string{PartNitrogen: "mg/kg"}},
		Status:       NPKOptimal,
		Severity:     NPKOptimal.Severity(),
		HistoricalData: []DataPoint{
			{Timestamp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), Nitrogen: f(120)},
		},
	}

	data, err := json.Marshal(reading)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	value, ok := decoded["currentValue"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected composite currentValue object, got %T", decoded["currentValue"])
	}
	if value[PartNitrogen] != 120.0 {
		t.Errorf("Expected nitrogen 120, got %v", value[PartNitrogen])
	}
	if value[PartPhosphorus] != "N/A" {
		t.Errorf("Expected phosphorus placeholder, got %v", value[PartPhosphorus])
	}
	if decoded["status"] != "npkOptimal" {
		t.Errorf("Expected status npkOptimal, got %v", decoded["status"])
	}

	scalar, _ := json.Marshal(PlaceholderValue("N/A"))
	if string(scalar) != `"N/A"` {
		t.Errorf("Expected placeholder to encode as string, got %s", scalar)
	}
}

func TestDiffStatuses(t *testing.T) {
	prev := []SensorReading{
		{ID: "1", Type: KindSoilMoisture, Status: SoilMoistureOptimal},
		{ID: "2", Type: KindTemperature, Status: TemperatureOptimal},
	}
	next := []SensorReading{
		{ID: "1", Type: KindSoilMoisture, Status: SoilMoistureDry, Severity: SeverityCritical},
		{ID: "2", Type: KindTemperature, Status: TemperatureOptimal},
		{ID: "3", Type: KindHumidity, Status: HumidityTooDry},
	}

	changes := DiffStatuses(prev, next)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	if changes[0].SensorID != "1" || changes[0].From != SoilMoistureOptimal || changes[0].To != SoilMoistureDry {
		t.Errorf("Unexpected change %+v", changes[0])
	}
}
