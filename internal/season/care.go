package season

import "gardencore/pkg/genetics"

// Sky is the coarse weather symbol used for plant care. It collapses the
// climate model's precipitation flags and cloudiness into the handful of
// states the evaporation model distinguishes.
type Sky int

const (
	SkyClear Sky = iota
	SkyPartlyCloudy
	SkyOvercast
	SkyRain
	SkyStorm
	SkySnow
)

func (s Sky) String() string {
	switch s {
	case SkyClear:
		return "clear"
	case SkyPartlyCloudy:
		return "partly cloudy"
	case SkyOvercast:
		return "overcast"
	case SkyRain:
		return "rain"
	case SkyStorm:
		return "storm"
	case SkySnow:
		return "snow"
	default:
		return "unknown"
	}
}

// SkyFor derives the sky symbol from a day's weather.
func SkyFor(w Weather) Sky {
	switch {
	case w.RainMM > 0 && w.MeanC < -1.0:
		return SkySnow
	case w.RainMM > 0:
		return SkyRain
	case w.Cloud >= 8:
		return SkyOvercast
	case w.Cloud >= 4:
		return SkyPartlyCloudy
	default:
		return SkyClear
	}
}

func (s Sky) evapFactor() float64 {
	switch s {
	case SkyClear:
		return 1.0
	case SkyPartlyCloudy:
		return 0.85
	case SkyOvercast:
		return 0.7
	case SkyRain, SkyStorm, SkySnow:
		return 0.4
	default:
		return 0.8
	}
}

// HourlyEvaporation returns the water units a plant loses in one hour at
// the given temperature under the given sky, clamped to a plausible band.
func HourlyEvaporation(tempC float64, sky Sky) float64 {
	diff := tempC - 15.0
	rate := 0.8 + 0.06*maxFloat(0, diff) - 0.04*maxFloat(0, -diff)
	return clampFloat(rate*sky.evapFactor(), 0.2, 2.2)
}

// RainTopUp returns the water a plant gains in one rainy hour. Rain only
// tops up genuinely dry plants and never past field capacity.
func RainTopUp(sky Sky, water int) int {
	if water >= 55 {
		return 0
	}
	switch sky {
	case SkyStorm:
		return minInt(2, 70-water)
	case SkyRain:
		return minInt(1, 70-water)
	default:
		return 0
	}
}

// WaterHealthDelta couples water level to health: the comfortable band
// heals, drought and waterlogging hurt.
func WaterHealthDelta(water int) int {
	switch {
	case water < 20 || water > 95:
		return -2
	case water > 85:
		return -1
	case water >= 40 && water <= 70:
		return +1
	case water >= 30:
		return 0
	default:
		return -1
	}
}

// DayPhase is the coarse time of day used for watering stress.
type DayPhase int

const (
	PhaseMorning DayPhase = iota
	PhaseNoon
	PhaseAfternoon
	PhaseEvening
)

// PhaseForHour maps an hour of day to its phase.
func PhaseForHour(hour int) DayPhase {
	switch {
	case hour < 11:
		return PhaseMorning
	case hour < 14:
		return PhaseNoon
	case hour < 18:
		return PhaseAfternoon
	default:
		return PhaseEvening
	}
}

// WateringAmount is the water added by one manual watering.
const WateringAmount = 30

// WateringPenalty returns the health cost of watering at the given phase.
// Midday watering scorches; weakened plants suffer more from it.
func WateringPenalty(phase DayPhase, health int, rng genetics.RandomSource) int {
	if phase != PhaseNoon && phase != PhaseAfternoon {
		return 0
	}
	if health >= 50 {
		return 1 + rng.Intn(3)
	}
	return 5 + rng.Intn(6)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
