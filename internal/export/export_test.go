package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

type labels map[string]string

func (l labels) T(key string, _ map[string]interface{}) string {
	if v, ok := l[key]; ok {
		return v
	}
	return key
}

var testLabels = labels{
	"export.sheet.summary":      "Summary",
	"export.sheet.current":      "Current Readings",
	"export.sheet.history":      "History",
	"export.column.sensor":      "Sensor",
	"export.column.value":       "Value",
	"export.column.unit":        "Unit",
	"export.column.status":      "Status",
	"export.column.timestamp":   "Timestamp",
	"sensor.Temperature":        "Temperature",
	"sensor.NPK Sensor":         "NPK Sensor",
	"status.optimalTemperature": "Optimal Temperature",
	"status.npkDeficiency":      "Nutrient Deficiency",
}

func f64(v float64) *float64 { return &v }

func sampleSnapshot() *models.Snapshot {
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &models.Snapshot{
		Sequence:    2,
		Live:        true,
		ChannelName: "Field A",
		FetchedAt:   ts,
		Sensors: []models.SensorReading{
			{
				ID:           "2",
				Type:         models.KindTemperature,
				CurrentValue: models.NumberValue(27.5),
				Unit:         models.Unit{Single: "°C"},
				Status:       models.TemperatureOptimal,
				Severity:     models.SeverityNormal,
				HistoricalData: []models.DataPoint{
					{Timestamp: ts.Add(-time.Minute), Value: f64(26)},
					{Timestamp: ts, Value: f64(27.5)},
				},
			},
			{
				ID:   "10",
				Type: models.KindNPKSensor,
				CurrentValue: models.CompositeValue(map[string]models.Scalar{
					models.PartNitrogen:   models.ScalarOf(f64(30), "N/A"),
					models.PartPhosphorus: models.ScalarOf(nil, "N/A"),
					models.PartPotassium:  models.ScalarOf(f64(150), "N/A"),
				}),
				Unit: models.Unit{Parts: map[string]string{
					models.PartNitrogen: "mg/kg", models.PartPhosphorus: "mg/kg", models.PartPotassium: "mg/kg",
				}},
				Status:   models.NPKDeficiency,
				Severity: models.SeverityWarning,
				HistoricalData: []models.DataPoint{
					{Timestamp: ts, Nitrogen: f64(30), Potassium: f64(150)},
				},
			},
		},
	}
}

func TestFormatValue(t *testing.T) {
	snap := sampleSnapshot()

	temp := snap.Sensors[0]
	if got := FormatValue(temp.CurrentValue, temp.Unit, temp.Type); got != "27.5 °C" {
		t.Errorf("Expected '27.5 °C', got %q", got)
	}

	npk := snap.Sensors[1]
	expected := "nitrogen: 30 mg/kg, phosphorus: N/A, potassium: 150 mg/kg"
	if got := FormatValue(npk.CurrentValue, npk.Unit, npk.Type); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}

	if got := FormatValue(models.PlaceholderValue("නැත"), models.Unit{Single: "%"}, models.KindHumidity); got != "නැත" {
		t.Errorf("Expected bare placeholder, got %q", got)
	}
}

func TestGenerateCSV(t *testing.T) {
	es := NewExportService(testLabels)

	records, err := es.GenerateCSV(sampleSnapshot())
	if err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if records[0][1] != "Sensor" || records[0][4] != "Status" {
		t.Errorf("Unexpected header %v", records[0])
	}
	if records[1][4] != "Optimal Temperature" || records[2][4] != "Nutrient Deficiency" {
		t.Errorf("Expected translated statuses, got %q and %q", records[1][4], records[2][4])
	}
	if records[2][5] != "warning" {
		t.Errorf("Expected severity warning, got %q", records[2][5])
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := es.WriteCSV(w, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Expected CSV output")
	}

	if _, err := es.GenerateCSV(nil); err == nil {
		t.Error("Expected error for nil snapshot")
	}
}

func TestGenerateExcel(t *testing.T) {
	es := NewExportService(testLabels)

	f, err := es.GenerateExcel(ExportData{Snapshot: sampleSnapshot(), GeneratedAt: time.Now()})
	if err != nil {
		t.Fatalf("GenerateExcel failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	expected := []string{"Summary", "Current Readings", "History"}
	if len(sheets) != len(expected) {
		t.Fatalf("Expected sheets %v, got %v", expected, sheets)
	}
	for i := range expected {
		if sheets[i] != expected[i] {
			t.Errorf("Sheet %d: expected %s, got %s", i, expected[i], sheets[i])
		}
	}

	rows, err := f.GetRows("History")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	// header + 2 temperature points + 2 NPK metrics
	if len(rows) != 5 {
		t.Fatalf("Expected 5 history rows, got %d", len(rows))
	}
	if rows[3][2] != models.PartNitrogen || rows[4][2] != models.PartPotassium {
		t.Errorf("Unexpected NPK metrics %v / %v", rows[3], rows[4])
	}
	if rows[3][4] != "mg/kg" {
		t.Errorf("Expected part unit, got %q", rows[3][4])
	}

	current, _ := f.GetRows("Current Readings")
	if len(current) != 3 || current[1][2] != "27.5 °C" {
		t.Errorf("Unexpected current rows %v", current)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func TestGenerateExcel_NilSnapshot(t *testing.T) {
	if _, err := NewExportService(testLabels).GenerateExcel(ExportData{}); err == nil {
		t.Error("Expected error for nil snapshot")
	}
}
