package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/xuri/excelize/v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Translator supplies sheet and column labels in the active language
type Translator interface {
	T(key string, replacements map[string]interface{}) string
}

// ExportService handles data export functionality
type ExportService struct {
	translator Translator
}

// NewExportService creates a new export service instance
func NewExportService(translator Translator) *ExportService {
	return &ExportService{translator: translator}
}

// ExportData represents data to be exported
type ExportData struct {
	Snapshot    *models.Snapshot
	GeneratedAt time.Time
}

func (es *ExportService) t(key string) string {
	return es.translator.T(key, nil)
}

func (es *ExportService) sensorName(kind models.SensorKind) string {
	return es.t("sensor." + string(kind))
}

func (es *ExportService) statusLabel(status models.Status) string {
	if status == nil {
		return ""
	}
	return es.t("status." + status.Key())
}

// GenerateExcel creates a workbook with a summary, the current readings and
// every historical point of the snapshot. The caller owns the returned file
// and must Close it.
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	if data.Snapshot == nil {
		return nil, fmt.Errorf("no snapshot to export")
	}

	f := excelize.NewFile()

	f.SetDocProps(&excelize.DocProperties{
		Category:       "AgriSmart Field Monitoring",
		Created:        data.GeneratedAt.Format(time.RFC3339),
		Creator:        "AgriSmart System",
		Description:    "Sensor readings and history export",
		LastModifiedBy: "AgriSmart Backend",
		Modified:       data.GeneratedAt.Format(time.RFC3339),
		Subject:        "Field Sensor Data",
		Title:          "AgriSmart Sensor Report",
		Version:        "1.0",
	})

	steps := []func(*excelize.File, ExportData) error{
		es.createSummarySheet,
		es.createCurrentSheet,
		es.createHistorySheet,
	}
	for _, step := range steps {
		if err := step(f, data); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	return f, nil
}

func headerStyle(f *excelize.File, color string, size float64) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: size, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}

func writeHeader(f *excelize.File, sheet string, headers []string, color string) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	style, err := headerStyle(f, color, 11)
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	sheetName := es.t("export.sheet.summary")
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	style, err := headerStyle(f, "548235", 14)
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "AgriSmart Sensor Report")
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "D1", style)
	f.SetRowHeight(sheetName, 1, 25)

	snap := data.Snapshot
	rows := [][2]interface{}{
		{es.t("export.summary.generated"), data.GeneratedAt.Format(timeLayout)},
		{es.t("export.summary.channel"), snap.ChannelName},
		{es.t("export.summary.live"), snap.Live},
		{es.t("export.summary.sequence"), snap.Sequence},
	}
	for i, r := range rows {
		row := i + 3
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r[0])
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r[1])
	}

	// Severity counts
	counts := map[models.Severity]int{}
	for _, s := range snap.Sensors {
		counts[s.Severity]++
	}
	row := len(rows) + 4
	for _, sev := range []models.Severity{models.SeverityNormal, models.SeverityWarning, models.SeverityCritical, models.SeverityUnknown} {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(sev))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), counts[sev])
		row++
	}

	f.SetColWidth(sheetName, "A", "A", 22)
	f.SetColWidth(sheetName, "B", "D", 20)

	return nil
}

// createCurrentSheet writes one row per sensor
func (es *ExportService) createCurrentSheet(f *excelize.File, data ExportData) error {
	sheetName := es.t("export.sheet.current")
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create current readings sheet: %w", err)
	}

	records := es.currentRecords(data.Snapshot)
	if err := writeHeader(f, sheetName, records[0], "70AD47"); err != nil {
		return err
	}
	for i, record := range records[1:] {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "F", 22)

	return nil
}

// createHistorySheet writes one row per historical point and metric
func (es *ExportService) createHistorySheet(f *excelize.File, data ExportData) error {
	sheetName := es.t("export.sheet.history")
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	headers := []string{
		es.t("export.column.timestamp"),
		es.t("export.column.sensor"),
		"Metric",
		es.t("export.column.value"),
		es.t("export.column.unit"),
	}
	if err := writeHeader(f, sheetName, headers, "C55A11"); err != nil {
		return err
	}

	row := 2
	for _, s := range data.Snapshot.Sensors {
		name := es.sensorName(s.Type)
		for _, p := range s.HistoricalData {
			for _, m := range pointMetrics(s.Type, p) {
				f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), p.Timestamp.Format(timeLayout))
				f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), name)
				f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), m.name)
				f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), m.value)
				f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), unitFor(s.Unit, m.name))
				row++
			}
		}
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "E", 15)

	return nil
}

type metric struct {
	name  string
	value float64
}

// pointMetrics lists the non-null values of a point in a stable order
func pointMetrics(kind models.SensorKind, p models.DataPoint) []metric {
	var out []metric
	add := func(name string, v *float64) {
		if v != nil {
			out = append(out, metric{name, *v})
		}
	}
	switch kind {
	case models.KindGasLevels:
		add(models.PartCO2, p.CO2)
		add(models.PartNH3, p.NH3)
		add(models.PartVOC, p.VOC)
	case models.KindNPKSensor:
		add(models.PartNitrogen, p.Nitrogen)
		add(models.PartPhosphorus, p.Phosphorus)
		add(models.PartPotassium, p.Potassium)
	default:
		add("value", p.Value)
	}
	return out
}

func unitFor(u models.Unit, part string) string {
	if u.Parts != nil {
		return u.Parts[part]
	}
	return u.Single
}

func formatScalar(s models.Scalar) string {
	if s.Number != nil {
		return strconv.FormatFloat(*s.Number, 'f', -1, 64)
	}
	return s.Placeholder
}

// FormatValue renders a current value with its unit, e.g. "24 %" or
// "nitrogen: 120 mg/kg, phosphorus: N/A, potassium: 150 mg/kg"
func FormatValue(v models.Value, u models.Unit, kind models.SensorKind) string {
	withUnit := func(s models.Scalar, unit string) string {
		text := formatScalar(s)
		if s.Number != nil && unit != "" {
			text += " " + unit
		}
		return text
	}

	if !v.IsComposite() {
		return withUnit(v.Scalar, u.Single)
	}
	parts := models.CompositeParts(kind)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, part+": "+withUnit(v.Parts[part], unitFor(u, part)))
	}
	return strings.Join(out, ", ")
}

func (es *ExportService) currentRecords(snap *models.Snapshot) [][]string {
	records := [][]string{{
		"ID",
		es.t("export.column.sensor"),
		es.t("export.column.value"),
		es.t("export.column.unit"),
		es.t("export.column.status"),
		"Severity",
	}}

	for _, s := range snap.Sensors {
		unit := s.Unit.Single
		if s.Unit.Parts != nil {
			unit = ""
		}
		records = append(records, []string{
			s.ID,
			es.sensorName(s.Type),
			FormatValue(s.CurrentValue, s.Unit, s.Type),
			unit,
			es.statusLabel(s.Status),
			string(s.Severity),
		})
	}
	return records
}

// GenerateCSV creates CSV records for the current readings of a snapshot
func (es *ExportService) GenerateCSV(snap *models.Snapshot) ([][]string, error) {
	if snap == nil {
		return nil, fmt.Errorf("no snapshot to export")
	}
	return es.currentRecords(snap), nil
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w *csv.Writer, records [][]string) error {
	return w.WriteAll(records)
}
