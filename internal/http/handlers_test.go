package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Capstone-E1/agrismart_backend/internal/advisory"
	"github.com/Capstone-E1/agrismart_backend/internal/i18n"
	"github.com/Capstone-E1/agrismart_backend/internal/models"
	"github.com/Capstone-E1/agrismart_backend/internal/services"
	"github.com/Capstone-E1/agrismart_backend/internal/store"
	"github.com/Capstone-E1/agrismart_backend/internal/ws"
)

type fakePoller struct {
	snap *models.Snapshot
	err  error
	st   store.SnapshotStore
}

func (f *fakePoller) PollOnce(context.Context) (*models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.st.ReplaceSnapshot(f.snap)
	return f.snap, nil
}

func (f *fakePoller) IsRunning() bool { return true }

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) GenerateText(context.Context, string, bool) (string, error) {
	return f.text, f.err
}

func (f *fakeGenerator) GenerateImage(context.Context, string) ([]byte, error) {
	return []byte{0xff, 0xd8}, f.err
}

func f64(v float64) *float64 { return &v }

func testSnapshot(seq uint64) *models.Snapshot {
	return &models.Snapshot{
		Sequence: seq,
		Live:     true,
		Sensors: []models.SensorReading{
			{ID: "2", Type: models.KindTemperature, CurrentValue: models.NumberValue(27.5),
				Unit: models.Unit{Single: "°C"}, Status: models.TemperatureOptimal, Severity: models.SeverityNormal,
				HistoricalData: []models.DataPoint{{Value: f64(27.5)}}},
			{ID: "4", Type: models.KindSoilMoisture, CurrentValue: models.NumberValue(30000),
				Unit: models.Unit{Single: "%"}, Status: models.SoilMoistureDry, Severity: models.SeverityWarning,
				HistoricalData: []models.DataPoint{}},
			{ID: "10", Type: models.KindNPKSensor,
				CurrentValue: models.CompositeValue(map[string]models.Scalar{
					models.PartNitrogen:   models.ScalarOf(f64(30), "N/A"),
					models.PartPhosphorus: models.ScalarOf(f64(40), "N/A"),
					models.PartPotassium:  models.ScalarOf(f64(150), "N/A"),
				}),
				Status: models.NPKDeficiency, Severity: models.SeverityWarning, HistoricalData: []models.DataPoint{}},
		},
	}
}

type testEnv struct {
	server *httptest.Server
	store  *store.Store
	poller *fakePoller
	gen    *fakeGenerator
	locale *i18n.Translator
}

func newTestEnv(t *testing.T, withSnapshot bool) *testEnv {
	t.Helper()

	st := store.NewStore()
	if withSnapshot {
		st.ReplaceSnapshot(testSnapshot(1))
	}
	poller := &fakePoller{snap: testSnapshot(2), st: st}
	gen := &fakeGenerator{text: "Irrigate tonight."}

	locale := i18n.NewFromFS(fstest.MapFS{
		"en.json": {Data: []byte(`{"gemini.common.error.apiKeyMissing": "AI unavailable", "common.na": "N/A"}`)},
		"si.json": {Data: []byte(`{"common.na": "නැත"}`)},
	})
	if err := locale.Load("en"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	hub := ws.NewHub()
	router := SetupRoutes(st, hub, poller, advisory.NewService(gen, locale), locale, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: st, poller: poller, gen: gen, locale: locale}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, APIResponse) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out APIResponse
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func dataMap(t *testing.T, resp APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	return m
}

func TestSensors_NoSnapshotYet(t *testing.T) {
	env := newTestEnv(t, false)
	status, resp := env.do(t, http.MethodGet, "/api/v1/sensors", "")
	if status != http.StatusServiceUnavailable || resp.Success {
		t.Errorf("Expected 503 error, got %d %+v", status, resp)
	}
}

func TestSensors_GetAndLookup(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodGet, "/api/v1/sensors", "")
	if status != http.StatusOK || !resp.Success {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}
	if sensors := dataMap(t, resp)["sensors"].([]interface{}); len(sensors) != 3 {
		t.Errorf("Expected 3 sensors, got %d", len(sensors))
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/v1/sensors/2", http.StatusOK},
		{"/api/v1/sensors/2/history", http.StatusOK},
		{"/api/v1/sensors/99", http.StatusNotFound},
		{"/api/v1/sensors/99/history", http.StatusNotFound},
	}
	for _, tt := range tests {
		if status, _ := env.do(t, http.MethodGet, tt.path, ""); status != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, status)
		}
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/sensors/2", "")
	sensor := dataMap(t, resp)
	if sensor["status"] != "optimalTemperature" || sensor["currentValue"] != 27.5 {
		t.Errorf("Unexpected sensor %v", sensor)
	}
}

func TestSensors_Refresh(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodPost, "/api/v1/sensors/refresh", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if seq := dataMap(t, resp)["sequence"]; seq != float64(2) {
		t.Errorf("Expected sequence 2, got %v", seq)
	}

	env.poller.err = services.ErrPollerStopped
	if status, _ := env.do(t, http.MethodPost, "/api/v1/sensors/refresh", ""); status != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when stopped, got %d", status)
	}

	env.poller.err = services.ErrStaleResult
	status, resp = env.do(t, http.MethodPost, "/api/v1/sensors/refresh", "")
	if status != http.StatusOK || resp.Message == "" {
		t.Errorf("Expected latest snapshot with message for stale result, got %d %+v", status, resp)
	}
}

func TestSensors_NPKBreakdown(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodGet, "/api/v1/sensors/npk", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	breakdown := dataMap(t, resp)["breakdown"].(map[string]interface{})
	if breakdown["nitrogen"] != "Deficient" || breakdown["overall"] != "npkDeficiency" {
		t.Errorf("Unexpected breakdown %v", breakdown)
	}
}

func TestAdvice_Farming(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodGet, "/api/v1/advice/farming?crop=Tomatoes", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}
	if dataMap(t, resp)["advice"] != "Irrigate tonight." {
		t.Errorf("Unexpected advice %v", resp.Data)
	}

	env.gen.err = errors.New("upstream down")
	status, resp = env.do(t, http.MethodGet, "/api/v1/advice/farming", "")
	if status != http.StatusBadGateway || !strings.Contains(resp.Error, "upstream down") {
		t.Errorf("Expected 502 with details, got %d %+v", status, resp)
	}
}

func TestAdvice_MissingKey(t *testing.T) {
	st := store.NewStore()
	st.ReplaceSnapshot(testSnapshot(1))
	locale := i18n.NewFromFS(fstest.MapFS{
		"en.json": {Data: []byte(`{"gemini.common.error.apiKeyMissing": "AI unavailable"}`)},
	})
	locale.Load("en")

	router := SetupRoutes(st, ws.NewHub(), &fakePoller{st: st}, advisory.NewService(nil, locale), locale, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/advice/farming", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	var resp APIResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "AI unavailable" {
		t.Errorf("Expected localized message, got %q", resp.Error)
	}
}

func TestAdvice_RecommendationsValidation(t *testing.T) {
	env := newTestEnv(t, true)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing ph", `{"temperature": 25, "moisture": 40}`, http.StatusBadRequest},
		{"ph out of range", `{"temperature": 25, "moisture": 40, "ph": 15}`, http.StatusBadRequest},
		{"unparseable answer", `{"temperature": 25, "moisture": 40, "ph": 6.5}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := env.do(t, http.MethodPost, "/api/v1/advice/recommendations", tt.body); status != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, status)
			}
		})
	}

	env.gen.text = `[{"cropName":"Okra","reason":"Heat","estimatedGrowingPeriod":"60 days"}]`
	status, resp := env.do(t, http.MethodPost, "/api/v1/advice/recommendations", `{"temperature": 30, "moisture": 40, "ph": 6.5}`)
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}
	if recs := resp.Data.([]interface{}); len(recs) != 1 {
		t.Errorf("Expected 1 recommendation, got %d", len(recs))
	}
}

func TestCrops_CRUD(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodGet, "/api/v1/crops", "")
	if status != http.StatusOK || len(resp.Data.([]interface{})) != 4 {
		t.Fatalf("Expected 4 seeded crops, got %d %+v", status, resp)
	}

	status, resp = env.do(t, http.MethodPost, "/api/v1/crops", `{"name": "Okra", "water_needs": "Moderate"}`)
	if status != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %+v", status, resp)
	}
	if id := dataMap(t, resp)["id"]; id != float64(5) {
		t.Errorf("Expected id 5, got %v", id)
	}

	if status, _ := env.do(t, http.MethodPost, "/api/v1/crops", `{"name": ""}`); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty name, got %d", status)
	}

	status, resp = env.do(t, http.MethodPut, "/api/v1/crops/5", `{"name": "Okra", "sunlight": "Full Sun"}`)
	if status != http.StatusOK || dataMap(t, resp)["sunlight"] != "Full Sun" {
		t.Errorf("Unexpected update result %d %+v", status, resp)
	}

	longPh := `{"name": "Okra", "optimal_ph": "` + strings.Repeat("6", models.MaxOptimalPhLen+1) + `"}`
	if status, _ := env.do(t, http.MethodPut, "/api/v1/crops/5", longPh); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for over-long optimal pH, got %d", status)
	}

	if status, _ := env.do(t, http.MethodDelete, "/api/v1/crops/5", ""); status != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/crops/5", ""); status != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
	if status, _ := env.do(t, http.MethodGet, "/api/v1/crops/abc", ""); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad id, got %d", status)
	}
}

func TestCrops_ConditionsApply(t *testing.T) {
	env := newTestEnv(t, true)
	env.gen.text = "```json\n{\"waterNeeds\":\"Low\",\"optimalPh\":\"6.0-7.0\",\"sunlight\":\"Partial Shade\"}\n```"

	status, resp := env.do(t, http.MethodGet, "/api/v1/crops/2/conditions?apply=true", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}

	crop, err := env.store.GetCrop(2)
	if err != nil {
		t.Fatalf("GetCrop failed: %v", err)
	}
	if crop.WaterNeeds != "Low" || crop.Sunlight != "Partial Shade" {
		t.Errorf("Expected conditions applied, got %+v", crop)
	}
}

func TestCrops_ConditionsApplyTruncatesLongAnswer(t *testing.T) {
	env := newTestEnv(t, true)
	longPh := strings.Repeat("pH 6.0 to 6.8 ", 6)
	env.gen.text = `{"waterNeeds":"Low","optimalPh":"` + longPh + `","sunlight":"Full Sun"}`

	status, resp := env.do(t, http.MethodGet, "/api/v1/crops/3/conditions?apply=true", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}

	crop, err := env.store.GetCrop(3)
	if err != nil {
		t.Fatalf("GetCrop failed: %v", err)
	}
	if len(crop.OptimalPh) > models.MaxOptimalPhLen {
		t.Errorf("Expected optimal pH within %d characters, got %q", models.MaxOptimalPhLen, crop.OptimalPh)
	}
}

func TestCrops_GenerateImage(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodPost, "/api/v1/crops/1/image", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", status, resp)
	}
	crop, _ := env.store.GetCrop(1)
	if !strings.HasPrefix(crop.ImageURL, "data:image/jpeg;base64,") {
		t.Errorf("Expected stored data URI, got %q", crop.ImageURL)
	}
}

func TestLanguage(t *testing.T) {
	env := newTestEnv(t, true)

	status, resp := env.do(t, http.MethodPut, "/api/v1/language", `{"language": "si"}`)
	if status != http.StatusOK || dataMap(t, resp)["language"] != "si" {
		t.Fatalf("Expected switch to si, got %d %+v", status, resp)
	}
	if env.locale.T("common.na", nil) != "නැත" {
		t.Error("Expected Sinhala table active")
	}

	// ta is supported but has no file here, so the fallback is reported
	status, resp = env.do(t, http.MethodPut, "/api/v1/language", `{"language": "ta"}`)
	if status != http.StatusOK || dataMap(t, resp)["language"] != "en" {
		t.Errorf("Expected fallback to en, got %d %+v", status, resp)
	}

	if status, _ := env.do(t, http.MethodPut, "/api/v1/language", `{"language": "fr"}`); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported language, got %d", status)
	}

	_, resp = env.do(t, http.MethodGet, "/api/v1/language", "")
	if supported := dataMap(t, resp)["supported"].([]interface{}); len(supported) != 3 {
		t.Errorf("Expected 3 supported languages, got %d", len(supported))
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := http.Get(env.server.URL + "/api/v1/export/sensors.csv")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("Unexpected CSV response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 4 {
		t.Errorf("Expected header plus 3 rows, got %d lines", lines)
	}

	resp, err = http.Get(env.server.URL + "/api/v1/export/sensors.xlsx")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	buf.Reset()
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("Expected xlsx archive, got %d (%d bytes)", resp.StatusCode, buf.Len())
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, true)
	status, resp := env.do(t, http.MethodGet, "/api/v1/health", "")
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	health := dataMap(t, resp)
	if health["database"] != "ok" || health["ai_available"] != true || health["sequence"] != float64(1) {
		t.Errorf("Unexpected health %v", health)
	}
}
