package services

import (
	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/thingspeak"
)

// DefaultPlaceholder is shown for missing readings when no translation is loaded
const DefaultPlaceholder = "N/A"

// Mapper turns feed responses into sensor view-models. It holds no state
// besides its field table, so mapping the same response twice yields the same
// output.
type Mapper struct {
	fields FieldTable
}

// NewMapper validates the field table and returns a mapper using it
func NewMapper(fields FieldTable) (*Mapper, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{fields: fields}, nil
}

// MapFeeds maps resp with the default field table
func MapFeeds(resp *thingspeak.FeedResponse, template []models.TemplateSensor, na string) []models.SensorReading {
	m := &Mapper{fields: DefaultFieldTable()}
	return m.Map(resp, template, na)
}

// Map builds one reading per template sensor. The newest feed gives the
// current value; every feed contributes to the history of chartable kinds.
// A nil response or one without feeds yields NotAvailable for every sensor.
func (m *Mapper) Map(resp *thingspeak.FeedResponse, template []models.TemplateSensor, na string) []models.SensorReading {
	if na == "" {
		na = DefaultPlaceholder
	}

	readings := make([]models.SensorReading, 0, len(template))
	latest, ok := resp.Latest()
	if !ok {
		for _, ts := range template {
			readings = append(readings, notAvailableReading(ts, na))
		}
		return readings
	}

	for _, ts := range template {
		reading, live := m.current(ts, latest, na)
		if live && IsChartable(ts.Type) {
			reading.HistoricalData = m.history(ts.Type, resp.Feeds)
		}
		readings = append(readings, reading)
	}
	return readings
}

// current classifies the newest record for one template sensor and reports
// whether any of its fields carried a number
func (m *Mapper) current(ts models.TemplateSensor, latest *thingspeak.Feed, na string) (models.SensorReading, bool) {
	reading := baseReading(ts)

	if ts.Type.IsComposite() {
		values := m.parts(ts.Type, latest)
		scalars := make(map[string]models.Scalar, len(values))
		live := false
		for part, v := range values {
			scalars[part] = models.ScalarOf(v, na)
			if v != nil {
				live = true
			}
		}
		reading.CurrentValue = models.CompositeValue(scalars)
		setStatus(&reading, models.ClassifyComposite(ts.Type, values))
		return reading, live
	}

	var v *float64
	if idx, ok := m.fields.Index(ts.Type, ""); ok {
		v = latest.Field(idx).Float()
	}
	reading.CurrentValue = models.Value{Scalar: models.ScalarOf(v, na)}
	setStatus(&reading, models.Classify(ts.Type, v))
	return reading, v != nil
}

// parts parses every sub-reading of a composite kind; unmapped parts are nil
func (m *Mapper) parts(kind models.SensorKind, feed *thingspeak.Feed) map[string]*float64 {
	values := make(map[string]*float64)
	for _, part := range models.CompositeParts(kind) {
		var v *float64
		if idx, ok := m.fields.Index(kind, part); ok {
			v = feed.Field(idx).Float()
		}
		values[part] = v
	}
	return values
}

// history builds the chronological series of a kind, dropping records where
// every relevant field is missing or whose timestamp cannot be read
func (m *Mapper) history(kind models.SensorKind, feeds []thingspeak.Feed) []models.DataPoint {
	points := make([]models.DataPoint, 0, len(feeds))
	for i := range feeds {
		feed := &feeds[i]
		ts, ok := feed.Timestamp()
		if !ok {
			continue
		}

		dp := models.DataPoint{Timestamp: ts}
		has := false
		if kind.IsComposite() {
			for part, v := range m.parts(kind, feed) {
				if v != nil {
					setPart(&dp, part, v)
					has = true
				}
			}
		} else if idx, ok := m.fields.Index(kind, ""); ok {
			dp.Value = feed.Field(idx).Float()
			has = dp.Value != nil
		}

		if has {
			points = append(points, dp)
		}
	}
	return points
}

func notAvailableReading(ts models.TemplateSensor, na string) models.SensorReading {
	reading := baseReading(ts)
	if ts.Type.IsComposite() {
		scalars := make(map[string]models.Scalar)
		for _, part := range models.CompositeParts(ts.Type) {
			scalars[part] = models.Scalar{Placeholder: na}
		}
		reading.CurrentValue = models.CompositeValue(scalars)
	} else {
		reading.CurrentValue = models.PlaceholderValue(na)
	}
	setStatus(&reading, models.NotAvailableStatus(ts.Type))
	return reading
}

func baseReading(ts models.TemplateSensor) models.SensorReading {
	return models.SensorReading{
		ID:             ts.ID,
		Type:           ts.Type,
		Unit:           copyUnit(ts.Unit),
		HistoricalData: []models.DataPoint{},
	}
}

func setStatus(r *models.SensorReading, s models.Status) {
	r.Status = s
	r.Severity = s.Severity()
}

func copyUnit(u models.Unit) models.Unit {
	if u.Parts == nil {
		return models.Unit{Single: u.Single}
	}
	parts := make(map[string]string, len(u.Parts))
	for k, v := range u.Parts {
		parts[k] = v
	}
	return models.Unit{Parts: parts}
}

func setPart(dp *models.DataPoint, part string, v *float64) {
	switch part {
	case models.PartCO2:
		dp.CO2 = v
	case models.PartNH3:
		dp.NH3 = v
	case models.PartVOC:
		dp.VOC = v
	case models.PartNitrogen:
		dp.Nitrogen = v
	case models.PartPhosphorus:
		dp.Phosphorus = v
	case models.PartPotassium:
		dp.Potassium = v
	}
}
