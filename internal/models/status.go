package models

// Severity groups statuses for alerting and colouring
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// Status is a classification of a sensor reading. Each sensor kind has its own
// closed set of statuses; the key doubles as the translation key of the label.
type Status interface {
	Key() string
	Available() bool
	Severity() Severity
}

// SoilMoistureStatus classifies raw soil moisture ADC counts
type SoilMoistureStatus string

const (
	SoilMoistureDry          SoilMoistureStatus = "dryNeedsIrrigation"
	SoilMoistureOptimal      SoilMoistureStatus = "optimalMoisture"
	SoilMoistureWet          SoilMoistureStatus = "wetReduceIrrigation"
	SoilMoistureWaterlogged  SoilMoistureStatus = "waterlogged"
	SoilMoistureNotAvailable SoilMoistureStatus = "soilStatusNotAvailable"
)

func (s SoilMoistureStatus) Key() string     { return string(s) }
func (s SoilMoistureStatus) Available() bool { return s != SoilMoistureNotAvailable }
func (s SoilMoistureStatus) Severity() Severity {
	switch s {
	case SoilMoistureOptimal:
		return SeverityNormal
	case SoilMoistureWet:
		return SeverityWarning
	case SoilMoistureDry, SoilMoistureWaterlogged:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// TemperatureStatus classifies air temperature in °C
type TemperatureStatus string

const (
	TemperatureTooCold      TemperatureStatus = "tooCold"
	TemperatureOptimal      TemperatureStatus = "optimalTemperature"
	TemperatureTooHot       TemperatureStatus = "tooHot"
	TemperatureNotAvailable TemperatureStatus = "temperatureNotAvailable"
)

func (s TemperatureStatus) Key() string     { return string(s) }
func (s TemperatureStatus) Available() bool { return s != TemperatureNotAvailable }
func (s TemperatureStatus) Severity() Severity {
	switch s {
	case TemperatureOptimal:
		return SeverityNormal
	case TemperatureTooCold, TemperatureTooHot:
		return SeverityWarning
	default:
		return SeverityUnknown
	}
}

// HumidityStatus classifies relative humidity in %
type HumidityStatus string

const (
	HumidityTooDry       HumidityStatus = "tooDry"
	HumidityOptimal      HumidityStatus = "optimalHumidity"
	HumidityTooHumid     HumidityStatus = "tooHumid"
	HumidityNotAvailable HumidityStatus = "humidityNotAvailable"
)

func (s HumidityStatus) Key() string     { return string(s) }
func (s HumidityStatus) Available() bool { return s != HumidityNotAvailable }
func (s HumidityStatus) Severity() Severity {
	switch s {
	case HumidityOptimal:
		return SeverityNormal
	case HumidityTooDry, HumidityTooHumid:
		return SeverityWarning
	default:
		return SeverityUnknown
	}
}

// SoilTemperatureStatus classifies soil temperature in °C
type SoilTemperatureStatus string

const (
	SoilTemperatureCool         SoilTemperatureStatus = "soilTempCool"
	SoilTemperatureOptimal      SoilTemperatureStatus = "soilTempOptimal"
	SoilTemperatureHeatStress   SoilTemperatureStatus = "soilTempHeatStress"
	SoilTemperatureNotAvailable SoilTemperatureStatus = "soilTempNotAvailable"
)

func (s SoilTemperatureStatus) Key() string     { return string(s) }
func (s SoilTemperatureStatus) Available() bool { return s != SoilTemperatureNotAvailable }
func (s SoilTemperatureStatus) Severity() Severity {
	switch s {
	case SoilTemperatureOptimal:
		return SeverityNormal
	case SoilTemperatureCool:
		return SeverityWarning
	case SoilTemperatureHeatStress:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// LightStatus classifies the light sensor. The sensor reads higher in the dark.
type LightStatus string

const (
	LightVeryDark     LightStatus = "lightVeryDark"
	LightLow          LightStatus = "lightLowLight"
	LightMedium       LightStatus = "lightMediumLight"
	LightBright       LightStatus = "lightBrightLight"
	LightNotAvailable LightStatus = "lightNotAvailable"
)

func (s LightStatus) Key() string     { return string(s) }
func (s LightStatus) Available() bool { return s != LightNotAvailable }
func (s LightStatus) Severity() Severity {
	switch s {
	case LightBright, LightMedium:
		return SeverityNormal
	case LightLow, LightVeryDark:
		return SeverityWarning
	default:
		return SeverityUnknown
	}
}

// RainStatus classifies the raw rain sensor ADC. The sensor reads lower when wet.
type RainStatus string

const (
	RainDry          RainStatus = "rainDry"
	RainLight        RainStatus = "rainLightRain"
	RainModerate     RainStatus = "rainModerateRain"
	RainHeavy        RainStatus = "rainHeavyRain"
	RainNotAvailable RainStatus = "rainNotAvailable"
)

func (s RainStatus) Key() string     { return string(s) }
func (s RainStatus) Available() bool { return s != RainNotAvailable }
func (s RainStatus) Severity() Severity {
	switch s {
	case RainDry, RainLight:
		return SeverityNormal
	case RainModerate:
		return SeverityWarning
	case RainHeavy:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// AirPressureStatus classifies barometric pressure in hPa
type AirPressureStatus string

const (
	AirPressureLow          AirPressureStatus = "airLowPressure"
	AirPressureNormal       AirPressureStatus = "airNormalPressure"
	AirPressureHigh         AirPressureStatus = "airHighPressure"
	AirPressureNotAvailable AirPressureStatus = "airPressureNotAvailable"
)

func (s AirPressureStatus) Key() string     { return string(s) }
func (s AirPressureStatus) Available() bool { return s != AirPressureNotAvailable }
func (s AirPressureStatus) Severity() Severity {
	switch s {
	case AirPressureNormal:
		return SeverityNormal
	case AirPressureLow, AirPressureHigh:
		return SeverityWarning
	default:
		return SeverityUnknown
	}
}

// GasStatus is the aggregate status of the CO2/NH3/VOC readings
type GasStatus string

const (
	GasOptimal      GasStatus = "gasLevelsOptimal"
	GasAttention    GasStatus = "gasLevelsAttention"
	GasNotAvailable GasStatus = "gasLevelsNotAvailable"
)

func (s GasStatus) Key() string     { return string(s) }
func (s GasStatus) Available() bool { return s != GasNotAvailable }
func (s GasStatus) Severity() Severity {
	switch s {
	case GasOptimal:
		return SeverityNormal
	case GasAttention:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// NPKStatus is the aggregate status of the nitrogen/phosphorus/potassium readings
type NPKStatus string

const (
	NPKOptimal      NPKStatus = "npkOptimal"
	NPKDeficiency   NPKStatus = "npkDeficiency"
	NPKExcess       NPKStatus = "npkExcess"
	NPKNotAvailable NPKStatus = "npkNotAvailable"
)

func (s NPKStatus) Key() string     { return string(s) }
func (s NPKStatus) Available() bool { return s != NPKNotAvailable }
func (s NPKStatus) Severity() Severity {
	switch s {
	case NPKOptimal:
		return SeverityNormal
	case NPKExcess:
		return SeverityWarning
	case NPKDeficiency:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// NutrientStatus classifies a single NPK nutrient
type NutrientStatus string

const (
	NutrientDeficient    NutrientStatus = "Deficient"
	NutrientOptimal      NutrientStatus = "Optimal"
	NutrientExcessive    NutrientStatus = "Excessive"
	NutrientNotAvailable NutrientStatus = "NotAvailable"
)

func (s NutrientStatus) Key() string     { return string(s) }
func (s NutrientStatus) Available() bool { return s != NutrientNotAvailable }
func (s NutrientStatus) Severity() Severity {
	switch s {
	case NutrientOptimal:
		return SeverityNormal
	case NutrientExcessive:
		return SeverityWarning
	case NutrientDeficient:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// GeneralStatus is the fallback status for kinds without a dedicated classifier
type GeneralStatus string

const (
	GeneralOptimal  GeneralStatus = "Optimal"
	GeneralStable   GeneralStatus = "Stable"
	GeneralWarning  GeneralStatus = "Warning"
	GeneralCritical GeneralStatus = "Critical"
)

func (s GeneralStatus) Key() string     { return string(s) }
func (s GeneralStatus) Available() bool { return true }
func (s GeneralStatus) Severity() Severity {
	switch s {
	case GeneralOptimal, GeneralStable:
		return SeverityNormal
	case GeneralWarning:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}
