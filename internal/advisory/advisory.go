package advisory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
)

// DefaultCropName is used for dashboard advice when no crop is chosen
const DefaultCropName = "General Vegetables"

var (
	ErrAPIKeyMissing = errors.New("AI API key not configured")
	ErrFetch         = errors.New("AI request failed")
	ErrParse         = errors.New("AI response could not be parsed")
	ErrNoImage       = errors.New("AI returned no image")
	ErrSensorData    = errors.New("sensor data unavailable")
)

// Error carries a localized message for display alongside the failure kind
type Error struct {
	Kind    error
	Message string
	Raw     string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Generator is the model backend used by Service
type Generator interface {
	GenerateText(ctx context.Context, prompt string, jsonMode bool) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Translator supplies prompt templates and messages in the active language
type Translator interface {
	T(key string, replacements map[string]interface{}) string
	Language() string
}

// Service builds localized prompts, calls the generator and validates answers
type Service struct {
	generator  Generator
	translator Translator
}

// NewService creates the advisory service. A nil generator is allowed and
// makes every operation report a missing API key.
func NewService(generator Generator, translator Translator) *Service {
	return &Service{generator: generator, translator: translator}
}

// Available reports whether a model backend is configured
func (s *Service) Available() bool {
	return s.generator != nil
}

var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFences removes a surrounding markdown code fence from a model answer
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil && m[2] != "" {
		text = strings.TrimSpace(m[2])
	}
	return text
}

func (s *Service) prompt(key string, replacements map[string]interface{}) string {
	lang := s.translator.Language()
	return s.translator.T(key, replacements) + s.translator.T("gemini.languageInstruction."+lang, nil)
}

func (s *Service) missingKey(key string) *Error {
	return &Error{Kind: ErrAPIKeyMissing, Message: s.translator.T(key, nil)}
}

func (s *Service) fetchError(op string, err error) *Error {
	log.Printf("⚠️  Advisory: %s failed: %v", op, err)
	return &Error{
		Kind:    ErrFetch,
		Message: s.translator.T("gemini.common.error.fetchError", nil) + " Details: " + errorDetail(err),
	}
}

func (s *Service) parseError(raw string) *Error {
	return &Error{
		Kind:    ErrParse,
		Message: s.translator.T("gemini.common.error.parseError", map[string]interface{}{"rawResponse": raw}),
		Raw:     raw,
	}
}

func (s *Service) text(ctx context.Context, op, prompt string, jsonMode bool) (string, error) {
	if s.generator == nil {
		return "", s.missingKey("gemini.common.error.apiKeyMissing")
	}
	out, err := s.generator.GenerateText(ctx, prompt, jsonMode)
	if err != nil {
		return "", s.fetchError(op, err)
	}
	return out, nil
}

// FarmingAdvice asks for short advice for crop given the air temperature and
// the soil-moisture status key
func (s *Service) FarmingAdvice(ctx context.Context, crop string, temp float64, moistureStatusKey string) (string, error) {
	if crop == "" {
		crop = DefaultCropName
	}
	return s.text(ctx, "farming advice", s.prompt("gemini.farmingAdvice.prompt", map[string]interface{}{
		"cropName":          crop,
		"temp":              formatNumber(temp),
		"moistureStatusKey": moistureStatusKey,
	}), false)
}

// SnapshotAdvice derives the farming-advice inputs from a sensor snapshot.
// It fails with ErrSensorData when no temperature is available.
func (s *Service) SnapshotAdvice(ctx context.Context, crop string, snap *models.Snapshot) (string, error) {
	var (
		temp     float64
		haveTemp bool
		moisture = string(models.SoilMoistureNotAvailable)
	)
	if snap != nil {
		if r, ok := snap.FindSensor(models.KindTemperature); ok {
			temp, haveTemp = r.CurrentValue.Number()
		}
		if r, ok := snap.FindSensor(models.KindSoilMoisture); ok && r.Status != nil {
			moisture = r.Status.Key()
		}
	}
	if !haveTemp {
		return "", &Error{Kind: ErrSensorData, Message: s.translator.T("dashboard.errors.sensorDataError", nil)}
	}
	return s.FarmingAdvice(ctx, crop, temp, moisture)
}

// CropOptimalConditions asks for the growing conditions of crop as JSON
func (s *Service) CropOptimalConditions(ctx context.Context, crop string) (*models.OptimalConditions, error) {
	raw, err := s.text(ctx, "crop optimal conditions", s.prompt("gemini.cropOptimalConditions.prompt", map[string]interface{}{
		"cropName": crop,
	}), true)
	if err != nil {
		return nil, err
	}

	body := StripFences(raw)
	if body == "" {
		return nil, s.parseError(raw)
	}
	var conditions *models.OptimalConditions
	if err := json.Unmarshal([]byte(body), &conditions); err != nil || conditions == nil {
		return nil, s.parseError(raw)
	}
	return conditions, nil
}

// CropRecommendations asks for crops suited to the given field conditions.
// The model may answer with an array or a single object; every entry must
// carry string cropName, reason and estimatedGrowingPeriod.
func (s *Service) CropRecommendations(ctx context.Context, temperature, moisture, ph float64) ([]models.CropRecommendation, error) {
	raw, err := s.text(ctx, "crop recommendations", s.prompt("gemini.aiCropRecommendations.prompt", map[string]interface{}{
		"temperature": formatNumber(temperature),
		"moisture":    formatNumber(moisture),
		"ph":          formatNumber(ph),
	}), true)
	if err != nil {
		return nil, err
	}

	recs, ok := parseRecommendations(StripFences(raw))
	if !ok {
		return nil, s.parseError(raw)
	}
	return recs, nil
}

func parseRecommendations(body string) ([]models.CropRecommendation, bool) {
	if body == "" {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		items = []json.RawMessage{json.RawMessage(body)}
	} else if items == nil {
		return nil, false
	}

	recs := make([]models.CropRecommendation, 0, len(items))
	for _, item := range items {
		rec, ok := parseRecommendation(item)
		if !ok {
			return nil, false
		}
		recs = append(recs, rec)
	}
	return recs, true
}

func parseRecommendation(item json.RawMessage) (models.CropRecommendation, bool) {
	var fields map[string]interface{}
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return models.CropRecommendation{}, false
	}

	var rec models.CropRecommendation
	for key, dst := range map[string]*string{
		"cropName":               &rec.CropName,
		"reason":                 &rec.Reason,
		"estimatedGrowingPeriod": &rec.EstimatedGrowingPeriod,
	} {
		v, ok := fields[key].(string)
		if !ok {
			return models.CropRecommendation{}, false
		}
		*dst = v
	}
	return rec, true
}

// DataInsights asks for analysis of monthly yield, moisture and pest data
func (s *Service) DataInsights(ctx context.Context, yield, moisture []models.MonthlyValue, pests []models.PestIncidence) (string, error) {
	yieldParts := make([]string, 0, len(yield))
	for _, d := range yield {
		yieldParts = append(yieldParts, d.Name+": "+formatNumber(d.Value)+" tons")
	}
	moistureParts := make([]string, 0, len(moisture))
	for _, d := range moisture {
		moistureParts = append(moistureParts, d.Name+": "+formatNumber(d.Value)+"%")
	}
	pestData := ""
	if len(pests) > 0 {
		pestParts := make([]string, 0, len(pests))
		for _, d := range pests {
			pestParts = append(pestParts, d.Month+": "+formatNumber(d.IncidenceRate)+"%")
		}
		pestData = "- Pest Incidence: " + strings.Join(pestParts, ", ")
	}

	return s.text(ctx, "data insights", s.prompt("gemini.dataInsights.prompt", map[string]interface{}{
		"yieldDataString":    strings.Join(yieldParts, ", "),
		"moistureDataString": strings.Join(moistureParts, ", "),
		"pestDataString":     pestData,
	}), false)
}

// CropImage generates a picture of crop and returns it as a JPEG data URI.
// The image prompt carries no language instruction.
func (s *Service) CropImage(ctx context.Context, crop string) (string, error) {
	if s.generator == nil {
		return "", s.missingKey("gemini.common.error.apiKeyMissing.image")
	}

	data, err := s.generator.GenerateImage(ctx, s.translator.T("gemini.generateCropImage.prompt", map[string]interface{}{
		"cropName": crop,
	}))
	if err != nil {
		log.Printf("⚠️  Advisory: image for %q failed: %v", crop, err)
		return "", &Error{
			Kind:    ErrFetch,
			Message: s.translator.T("gemini.generateCropImage.error.apiError", map[string]interface{}{"error": errorDetail(err)}),
		}
	}
	if len(data) == 0 {
		return "", &Error{
			Kind:    ErrNoImage,
			Message: s.translator.T("gemini.generateCropImage.error.noImageBytes", map[string]interface{}{"cropName": crop}),
		}
	}
	return "data:" + imageMIMEType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
