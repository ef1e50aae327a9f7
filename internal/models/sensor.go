package models

import (
	"encoding/json"
	"time"
)

// SensorKind identifies one measurement channel of the field station
type SensorKind string

const (
	KindSoilMoisture    SensorKind = "Soil Moisture"
	KindTemperature     SensorKind = "Temperature"
	KindHumidity        SensorKind = "Humidity"
	KindNutrients       SensorKind = "Nutrients"
	KindLightIntensity  SensorKind = "Light Intensity"
	KindSoilTemperature SensorKind = "Soil Temperature"
	KindRainLevel       SensorKind = "Rain Level"
	KindAirPressure     SensorKind = "Air Pressure"
	KindGasLevels       SensorKind = "Gas Levels"
	KindNPKSensor       SensorKind = "NPK Sensor"
)

// AllKinds lists every supported sensor kind in display order
var AllKinds = []SensorKind{
	KindSoilMoisture,
	KindTemperature,
	KindHumidity,
	KindNutrients,
	KindLightIntensity,
	KindSoilTemperature,
	KindRainLevel,
	KindAirPressure,
	KindGasLevels,
	KindNPKSensor,
}

// IsValid reports whether k is one of the supported sensor kinds
func (k SensorKind) IsValid() bool {
	for _, kind := range AllKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// IsComposite reports whether readings of this kind carry several named sub-values
func (k SensorKind) IsComposite() bool {
	return k == KindGasLevels || k == KindNPKSensor
}

// Sub-reading keys of the composite sensors
const (
	PartCO2        = "co2"
	PartNH3        = "nh3"
	PartVOC        = "voc"
	PartNitrogen   = "nitrogen"
	PartPhosphorus = "phosphorus"
	PartPotassium  = "potassium"
)

// CompositeParts returns the ordered sub-reading keys for a composite kind
func CompositeParts(kind SensorKind) []string {
	switch kind {
	case KindGasLevels:
		return []string{PartCO2, PartNH3, PartVOC}
	case KindNPKSensor:
		return []string{PartNitrogen, PartPhosphorus, PartPotassium}
	default:
		return nil
	}
}

// Scalar is a single displayed value: a number, or the placeholder text shown
// when no number is available
type Scalar struct {
	Number      *float64
	Placeholder string
}

// ScalarOf returns the number when present, otherwise the placeholder
func ScalarOf(v *float64, placeholder string) Scalar {
	if v != nil {
		n := *v
		return Scalar{Number: &n}
	}
	return Scalar{Placeholder: placeholder}
}

// MarshalJSON encodes the scalar as a JSON number or string
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.Number != nil {
		return json.Marshal(*s.Number)
	}
	return json.Marshal(s.Placeholder)
}

// Value is the current value of a sensor. Simple sensors use Scalar, composite
// sensors use Parts keyed by sub-reading name.
type Value struct {
	Scalar Scalar
	Parts  map[string]Scalar
}

// NumberValue builds a scalar value holding a number
func NumberValue(n float64) Value {
	return Value{Scalar: Scalar{Number: &n}}
}

// PlaceholderValue builds a scalar value holding placeholder text
func PlaceholderValue(text string) Value {
	return Value{Scalar: Scalar{Placeholder: text}}
}

// CompositeValue builds a keyed value for composite sensors
func CompositeValue(parts map[string]Scalar) Value {
	return Value{Parts: parts}
}

// IsComposite reports whether the value holds sub-readings
func (v Value) IsComposite() bool {
	return v.Parts != nil
}

// Number returns the scalar number, if any
func (v Value) Number() (float64, bool) {
	if v.Parts != nil || v.Scalar.Number == nil {
		return 0, false
	}
	return *v.Scalar.Number, true
}

// Part returns the number of a composite sub-reading, if any
func (v Value) Part(key string) (float64, bool) {
	s, ok := v.Parts[key]
	if !ok || s.Number == nil {
		return 0, false
	}
	return *s.Number, true
}

// MarshalJSON encodes a composite value as an object, otherwise as a scalar
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Parts != nil {
		return json.Marshal(v.Parts)
	}
	return json.Marshal(v.Scalar)
}

// Unit is a display unit, either one string or one per composite sub-reading
type Unit struct {
	Single string
	Parts  map[string]string
}

// MarshalJSON encodes a composite unit as an object, otherwise as a string
func (u Unit) MarshalJSON() ([]byte, error) {
	if u.Parts != nil {
		return json.Marshal(u.Parts)
	}
	return json.Marshal(u.Single)
}

// DataPoint is one entry of a sensor's historical series
type DataPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      *float64  `json:"value,omitempty"`
	CO2        *float64  `json:"co2,omitempty"`
	NH3        *float64  `json:"nh3,omitempty"`
	VOC        *float64  `json:"voc,omitempty"`
	Nitrogen   *float64  `json:"nitrogen,omitempty"`
	Phosphorus *float64  `json:"phosphorus,omitempty"`
	Potassium  *float64  `json:"potassium,omitempty"`
}

// SensorReading is the view-model of one sensor as shown on the dashboard
type SensorReading struct {
	ID             string      `json:"id"`
	Type           SensorKind  `json:"type"`
	CurrentValue   Value       `json:"currentValue"`
	Unit           Unit        `json:"unit"`
	Status         Status      `json:"status"`
	Severity       Severity    `json:"severity"`
	HistoricalData []DataPoint `json:"historicalData"`
}

// TemplateSensor is the static definition of a sensor, independent of live data
type TemplateSensor struct {
	ID   string
	Type SensorKind
	Unit Unit
}

// DefaultTemplate returns the sensor layout of the field station
func DefaultTemplate() []TemplateSensor {
	return []TemplateSensor{
		{ID: "1", Type: KindSoilMoisture, Unit: Unit{Single: "%"}},
		{ID: "2", Type: KindTemperature, Unit: Unit{Single: "°C"}},
		{ID: "3", Type: KindHumidity, Unit: Unit{Single: "%"}},
		{ID: "4", Type: KindNutrients, Unit: Unit{Single: "dS/m"}},
		{ID: "5", Type: KindLightIntensity, Unit: Unit{Single: "lux"}},
		{ID: "6", Type: KindSoilTemperature, Unit: Unit{Single: "°C"}},
		{ID: "7", Type: KindRainLevel, Unit: Unit{Single: "mm/hr"}},
		{ID: "8", Type: KindAirPressure, Unit: Unit{Single: "hPa"}},
		{ID: "9", Type: KindGasLevels, Unit: Unit{Parts: map[string]string{
			PartCO2: "ppm",
			PartNH3: "ppm",
			PartVOC: "ppm",
		}}},
		{ID: "10", Type: KindNPKSensor, Unit: Unit{Parts: map[string]string{
			PartNitrogen:   "mg/kg",
			PartPhosphorus: "mg/kg",
			PartPotassium:  "mg/kg",
		}}},
	}
}

// Snapshot is one complete, classified view of all sensors built from a single poll
type Snapshot struct {
	Sequence    uint64          `json:"sequence"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Live        bool            `json:"live"`
	ChannelName string          `json:"channel_name,omitempty"`
	LastEntryID int64           `json:"last_entry_id,omitempty"`
	Sensors     []SensorReading `json:"sensors"`
}

// FindSensor returns the first sensor of the given kind
func (s *Snapshot) FindSensor(kind SensorKind) (*SensorReading, bool) {
	for i := range s.Sensors {
		if s.Sensors[i].Type == kind {
			return &s.Sensors[i], true
		}
	}
	return nil, false
}

// StatusChange describes a sensor whose status moved between two snapshots
type StatusChange struct {
	SensorID string     `json:"sensor_id"`
	Type     SensorKind `json:"type"`
	From     Status     `json:"from"`
	To       Status     `json:"to"`
	Severity Severity   `json:"severity"`
}

// DiffStatuses lists the sensors whose status differs between prev and next.
// Sensors absent from prev are not reported.
func DiffStatuses(prev, next []SensorReading) []StatusChange {
	previous := make(map[string]Status, len(prev))
	for _, s := range prev {
		previous[s.ID] = s.Status
	}

	var changes []StatusChange
	for _, s := range next {
		old, ok := previous[s.ID]
		if !ok || old == nil || s.Status == nil {
			continue
		}
		if old.Key() != s.Status.Key() {
			changes = append(changes, StatusChange{
				SensorID: s.ID,
				Type:     s.Type,
				From:     old,
				To:       s.Status,
				Severity: s.Severity,
			})
		}
	}
	return changes
}
