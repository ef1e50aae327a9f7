package models

import "math"

// usable reports whether v carries a real number
func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// ClassifySoilMoisture classifies a raw soil moisture ADC count.
// Higher counts mean drier soil.
func ClassifySoilMoisture(v *float64) Status {
	if !usable(v) {
		return SoilMoistureNotAvailable
	}
	switch x := *v; {
	case x > 28000:
		return SoilMoistureDry
	case x >= 20000:
		return SoilMoistureOptimal
	case x > 15000:
		return SoilMoistureWet
	default:
		return SoilMoistureWaterlogged
	}
}

// ClassifyTemperature classifies air temperature in °C
func ClassifyTemperature(v *float64) Status {
	if !usable(v) {
		return TemperatureNotAvailable
	}
	switch x := *v; {
	case x < 25:
		return TemperatureTooCold
	case x <= 32:
		return TemperatureOptimal
	default:
		return TemperatureTooHot
	}
}

// ClassifyHumidity classifies relative humidity in %
func ClassifyHumidity(v *float64) Status {
	if !usable(v) {
		return HumidityNotAvailable
	}
	switch x := *v; {
	case x < 60:
		return HumidityTooDry
	case x <= 80:
		return HumidityOptimal
	default:
		return HumidityTooHumid
	}
}

// ClassifySoilTemperature classifies soil temperature in °C
func ClassifySoilTemperature(v *float64) Status {
	if !usable(v) {
		return SoilTemperatureNotAvailable
	}
	switch x := *v; {
	case x < 20:
		return SoilTemperatureCool
	case x <= 30:
		return SoilTemperatureOptimal
	default:
		return SoilTemperatureHeatStress
	}
}

// ClassifyLight classifies the light sensor reading (inverted scale)
func ClassifyLight(v *float64) Status {
	if !usable(v) {
		return LightNotAvailable
	}
	switch x := *v; {
	case x > 20000:
		return LightVeryDark
	case x > 15000:
		return LightLow
	case x > 10000:
		return LightMedium
	default:
		return LightBright
	}
}

// ClassifyRain classifies the raw rain sensor ADC (inverted scale)
func ClassifyRain(v *float64) Status {
	if !usable(v) {
		return RainNotAvailable
	}
	switch x := *v; {
	case x > 28000:
		return RainDry
	case x > 25000:
		return RainLight
	case x > 20000:
		return RainModerate
	default:
		return RainHeavy
	}
}

// ClassifyAirPressure classifies barometric pressure in hPa
func ClassifyAirPressure(v *float64) Status {
	if !usable(v) {
		return AirPressureNotAvailable
	}
	switch x := *v; {
	case x < 1000:
		return AirPressureLow
	case x <= 1025:
		return AirPressureNormal
	default:
		return AirPressureHigh
	}
}

// Classifier maps a nullable reading to a status
type Classifier func(v *float64) Status

var scalarClassifiers = map[SensorKind]Classifier{
	KindSoilMoisture:    ClassifySoilMoisture,
	KindTemperature:     ClassifyTemperature,
	KindHumidity:        ClassifyHumidity,
	KindSoilTemperature: ClassifySoilTemperature,
	KindLightIntensity:  ClassifyLight,
	KindRainLevel:       ClassifyRain,
	KindAirPressure:     ClassifyAirPressure,
}

// ClassifierFor returns the scalar classifier of a kind
func ClassifierFor(kind SensorKind) (Classifier, bool) {
	c, ok := scalarClassifiers[kind]
	return c, ok
}

// Classify classifies a scalar reading of the given kind. Composite kinds are
// classified from their parts with ClassifyComposite; given a scalar they
// report NotAvailable.
func Classify(kind SensorKind, v *float64) Status {
	if c, ok := scalarClassifiers[kind]; ok {
		return c(v)
	}
	return NotAvailableStatus(kind)
}

// ClassifyComposite classifies the sub-readings of a composite kind
func ClassifyComposite(kind SensorKind, parts map[string]*float64) Status {
	switch kind {
	case KindGasLevels:
		return ClassifyGas(parts[PartCO2], parts[PartNH3], parts[PartVOC])
	case KindNPKSensor:
		return ClassifyNPK(parts[PartNitrogen], parts[PartPhosphorus], parts[PartPotassium])
	default:
		return NotAvailableStatus(kind)
	}
}

// NotAvailableStatus returns the status a kind reports without data.
// The legacy nutrients kind has no classifier and always reports Critical.
func NotAvailableStatus(kind SensorKind) Status {
	switch kind {
	case KindSoilMoisture:
		return SoilMoistureNotAvailable
	case KindTemperature:
		return TemperatureNotAvailable
	case KindHumidity:
		return HumidityNotAvailable
	case KindSoilTemperature:
		return SoilTemperatureNotAvailable
	case KindLightIntensity:
		return LightNotAvailable
	case KindRainLevel:
		return RainNotAvailable
	case KindAirPressure:
		return AirPressureNotAvailable
	case KindGasLevels:
		return GasNotAvailable
	case KindNPKSensor:
		return NPKNotAvailable
	default:
		return GeneralCritical
	}
}
