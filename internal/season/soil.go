package season

import "time"

// Soil update coefficients, April-tuned for Brno. Soil temperature lags the
// air mean; rain both cools and wets the bed; warm, clear, high-amplitude
// days dry it out.
const (
	soilLag          = 0.18
	soilRainChill    = 0.15
	SoilInitTempC    = -2.0
	sowMinSoilC      = -2.0
	hotAvoid5DayC    = 25.0
	heatNoonC        = 34.0
	baseDry          = 0.015
	tempDryGain      = 0.0025
	ampDryGain       = 0.010
	cloudDryCut      = 0.04
	rainWetPerMM     = 0.010
	autumnRunwayDays = 1
)

// Soil is the shared bed state: temperature, moisture in [0,1], and the
// season's accumulated soil GDD.
type Soil struct {
	TempC    float64
	Moisture float64
	GDD      float64
}

// NewSoil returns early-spring soil.
func NewSoil() Soil {
	return Soil{TempC: SoilInitTempC, Moisture: 0.5}
}

// Step integrates one day of weather into the soil and returns the day's
// GDD increment.
func (s *Soil) Step(w Weather) float64 {
	target := w.MeanC - 0.5
	s.TempC += soilLag * (target - s.TempC)
	if w.RainMM > 0 {
		s.TempC -= soilRainChill * (0.5 + minFloat(1.5, w.RainMM/10.0))
	}

	dry := baseDry +
		maxFloat(0, w.MeanC-5.0)*tempDryGain +
		w.AmpScale*ampDryGain -
		(w.Cloud/10.0)*cloudDryCut
	if w.NoonC >= heatNoonC {
		dry += 0.01
	}
	s.Moisture = clampFloat(s.Moisture+w.RainMM*rainWetPerMM-dry, 0, 1)

	inc := maxFloat(0, s.TempC-BaseTempC)
	s.GDD += inc
	return inc
}

// SowCheck is the input to the sowing gate: recent air means and the frost
// calendar alongside the soil itself.
type SowCheck struct {
	Date          time.Time
	Air5DayMeanC  float64
	Air10DayMeanC float64
	FrostSeason   bool
	FrostFreeDays int
}

// CanSow decides whether seeds may go in the ground today. Spring months
// get a bias toward Mendel's April sowings when the air has warmed; outside
// that, the frost window, cold soil, summer heat, and the autumn frost
// runway all close the gate.
func (s Soil) CanSow(c SowCheck) (bool, string) {
	month := c.Date.Month()
	switch {
	case month == time.March && c.Air10DayMeanC >= 5.5:
		return true, "march bias: temps okay"
	case month == time.April && c.Air10DayMeanC >= 5.5:
		return true, "april bias: ideal for sowing"
	case month == time.May:
		return true, "may: open sowing"
	}

	if c.FrostSeason {
		return false, "frost window active"
	}
	if s.TempC < sowMinSoilC {
		return false, "soil too cold"
	}
	if c.Air5DayMeanC > hotAvoid5DayC && !inAutumnWindow(c.Date) {
		return false, "too hot for new sowings"
	}
	if afterAutumnOpen(c.Date) && c.FrostFreeDays < autumnRunwayDays {
		return false, "too close to first autumn frost"
	}
	return true, "ok to sow"
}

func afterAutumnOpen(d time.Time) bool {
	m, day := int(d.Month()), d.Day()
	return m > 8 || (m == 8 && day >= 20)
}

func inAutumnWindow(d time.Time) bool {
	m, day := int(d.Month()), d.Day()
	if !afterAutumnOpen(d) {
		return false
	}
	return m < 10 || (m == 10 && day <= 5)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
