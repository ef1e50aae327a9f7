package models

// Range is an inclusive numeric band
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether x lies within the band
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Normal gas ranges in ppm
var (
	CO2Range = Range{Min: 350, Max: 1000}
	NH3Range = Range{Min: 0, Max: 5}
	VOCRange = Range{Min: 0, Max: 2}
)

// ClassifyGas aggregates the CO2, NH3 and VOC readings.
// Only non-null readings are considered.
func ClassifyGas(co2, nh3, voc *float64) Status {
	readings := []struct {
		v *float64
		r Range
	}{
		{co2, CO2Range},
		{nh3, NH3Range},
		{voc, VOCRange},
	}

	seen := 0
	for _, g := range readings {
		if !usable(g.v) {
			continue
		}
		seen++
		if !g.r.Contains(*g.v) {
			return GasAttention
		}
	}
	if seen == 0 {
		return GasNotAvailable
	}
	return GasOptimal
}

// NutrientThresholds holds the bands of one nutrient in mg/kg. Values below
// Deficient are deficient, values in [OptimalLow, OptimalHigh] are optimal and
// anything else is excessive.
type NutrientThresholds struct {
	Deficient   float64 `json:"deficient"`
	OptimalLow  float64 `json:"optimal_low"`
	OptimalHigh float64 `json:"optimal_high"`
}

var (
	NitrogenThresholds   = NutrientThresholds{Deficient: 50, OptimalLow: 100, OptimalHigh: 150}
	PhosphorusThresholds = NutrientThresholds{Deficient: 20, OptimalLow: 30, OptimalHigh: 50}
	PotassiumThresholds  = NutrientThresholds{Deficient: 80, OptimalLow: 120, OptimalHigh: 180}
)

// Classify classifies one nutrient reading
func (t NutrientThresholds) Classify(v *float64) NutrientStatus {
	if !usable(v) {
		return NutrientNotAvailable
	}
	x := *v
	switch {
	case x < t.Deficient:
		return NutrientDeficient
	case x >= t.OptimalLow && x <= t.OptimalHigh:
		return NutrientOptimal
	default:
		return NutrientExcessive
	}
}

// NPKBreakdown is the per-nutrient classification behind an NPK status
type NPKBreakdown struct {
	Nitrogen   NutrientStatus `json:"nitrogen"`
	Phosphorus NutrientStatus `json:"phosphorus"`
	Potassium  NutrientStatus `json:"potassium"`
	Overall    NPKStatus      `json:"overall"`
}

// BreakdownNPK classifies each nutrient and aggregates them.
// Deficiency beats excess, excess beats optimal.
func BreakdownNPK(n, p, k *float64) NPKBreakdown {
	b := NPKBreakdown{
		Nitrogen:   NitrogenThresholds.Classify(n),
		Phosphorus: PhosphorusThresholds.Classify(p),
		Potassium:  PotassiumThresholds.Classify(k),
	}
	all := []NutrientStatus{b.Nitrogen, b.Phosphorus, b.Potassium}

	switch {
	case hasNutrient(all, NutrientDeficient):
		b.Overall = NPKDeficiency
	case hasNutrient(all, NutrientExcessive):
		b.Overall = NPKExcess
	case hasNutrient(all, NutrientOptimal):
		// remaining classified nutrients can only be optimal here
		b.Overall = NPKOptimal
	default:
		b.Overall = NPKNotAvailable
	}
	return b
}

// ClassifyNPK aggregates the nitrogen, phosphorus and potassium readings
func ClassifyNPK(n, p, k *float64) Status {
	return BreakdownNPK(n, p, k).Overall
}

func hasNutrient(statuses []NutrientStatus, want NutrientStatus) bool {
	for _, s := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
