// Package climate generates daily weather for 1850s Brno from Gregor
// Mendel's meteorological record: hourly temperature curves interpolated
// from monthly anchors, monthly precipitation frequencies, and frost
// season windows. Historical mode follows the climatology smoothly;
// stochastic mode layers an AR(1) anomaly on top. Both are deterministic
// under a fixed seed.
package climate

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Mode selects how closely generated weather follows the climatology.
type Mode string

const (
	// ModeHistorical produces smooth temperatures straight from the tables.
	ModeHistorical Mode = "historical"
	// ModeStochastic adds an autocorrelated day-to-day anomaly.
	ModeStochastic Mode = "stochastic"
)

// AR(1) anomaly parameters for stochastic mode.
const (
	anomalyPhi   = 0.6
	anomalySigma = 1.8
)

// Diurnal amplitude scaling: overcast days flatten the temperature curve.
const (
	clearAmp    = 1.0
	overcastAmp = 0.5
)

// DefaultSeed seeds deterministic event placement when none is given.
const DefaultSeed = 1865

// defaultFrostWindow covers years outside the loaded record.
var defaultFrostWindow = frostRow{SpringDOY: 122, AutumnDOY: 286}

// Config configures a Climate.
type Config struct {
	Mode Mode
	Seed int64
}

// Climate serves daily weather states derived from the embedded Brno
// tables. Safe for concurrent use.
type Climate struct {
	mode   Mode
	seed   int64
	tables *tables

	mu       sync.Mutex
	anomaly  float64
	anomRNG  *rand.Rand
	anomDate time.Time
}

// New loads the embedded climatology.
func New(cfg Config) (*Climate, error) {
	t, err := loadTables()
	if err != nil {
		return nil, err
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeHistorical
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	return &Climate{
		mode:    mode,
		seed:    seed,
		tables:  t,
		anomRNG: rand.New(rand.NewSource(seed)),
	}, nil
}

// Day is one generated day of weather.
type Day struct {
	Hours       [24]float64
	RainMM      float64
	Rain        bool
	Snow        bool
	Thunder     bool
	Hail        bool
	FrostSeason bool
	AmpScale    float64
	Cloud       float64
}

// MeanC is the 24-hour mean temperature.
func (d Day) MeanC() float64 {
	var sum float64
	for _, h := range d.Hours {
		sum += h
	}
	return sum / 24
}

// MinC is the overnight minimum.
func (d Day) MinC() float64 {
	min := d.Hours[0]
	for _, h := range d.Hours[1:] {
		if h < min {
			min = h
		}
	}
	return min
}

// MaxC is the afternoon maximum.
func (d Day) MaxC() float64 {
	max := d.Hours[0]
	for _, h := range d.Hours[1:] {
		if h > max {
			max = h
		}
	}
	return max
}

// NoonC is the early-afternoon reading at 14:00.
func (d Day) NoonC() float64 { return d.Hours[14] }

// FrostWindow returns the last spring frost and first autumn frost as days
// of year for the given calendar year.
func (c *Climate) FrostWindow(year int) (springDOY, autumnDOY int) {
	rec, ok := c.tables.frost[year]
	if !ok || rec.SpringDOY == 0 || rec.AutumnDOY == 0 {
		rec = defaultFrostWindow
	}
	return rec.SpringDOY, rec.AutumnDOY
}

// FrostFreeDays returns how many frost-free days remain after the given
// date before the first autumn frost.
func (c *Climate) FrostFreeDays(date time.Time) int {
	_, autumn := c.FrostWindow(date.Year())
	rem := autumn - date.YearDay()
	if rem < 0 {
		return 0
	}
	return rem
}

// HourlyTargets returns the 24 hourly temperatures for a date.
func (c *Climate) HourlyTargets(date time.Time) [24]float64 {
	return c.DailyState(date).Hours
}

// DailyState generates the full weather state for a date.
func (c *Climate) DailyState(date time.Time) Day {
	month := int(date.Month())
	cloud := c.monthScalar(c.tables.cloud, month, 5.0)
	clearFrac := clamp(1.0-cloud/10.0, 0, 1)
	amp := overcastAmp + (clearAmp-overcastAmp)*clearFrac

	cur := c.anchorsFor(date)
	next := c.anchorsFor(date.AddDate(0, 0, 1))
	hours := hourlyFromAnchors(cur, next.T06, amp)
	enforceMinAmplitude(&hours, month)

	if c.mode == ModeStochastic {
		hours = c.applyAnomaly(date, hours)
	}

	day := Day{Hours: hours, AmpScale: amp, Cloud: cloud}

	dim := daysInMonth(date)
	rainRec := c.tables.rain[month]
	rainSet := eventDays(c.seed, date.Year(), month, 0, dim, int(math.Round(rainRec.Days)))
	if rainSet[date.Day()] && rainRec.Days > 0 {
		day.Rain = true
		meanIntensity := rainRec.TotalMM / math.Max(1, rainRec.Days)
		r := rand.New(rand.NewSource(c.seed ^ int64(date.Year()*1000+date.YearDay())))
		day.RainMM = meanIntensity * (0.5 + r.Float64())
	}

	snowDays := int(math.Round(c.monthScalar(c.tables.snow, month, 0)))
	day.Snow = eventDays(c.seed, date.Year(), month, 9999, dim, snowDays)[date.Day()]
	thunderDays := int(math.Round(c.monthScalar(c.tables.thunder, month, 0)))
	day.Thunder = eventDays(c.seed, date.Year(), month, 4444, dim, thunderDays)[date.Day()]
	hailDays := int(math.Round(c.monthScalar(c.tables.hail, month, 0)))
	day.Hail = eventDays(c.seed, date.Year(), month, 5555, dim, hailDays)[date.Day()]

	// Temperature constraints: no snow on warm days, rain turns to snow
	// below freezing.
	tMean := day.MeanC()
	if day.Snow && tMean > 3.0 && day.MinC() > 0.5 {
		day.Snow = false
	}
	if day.Rain && tMean < -1.0 {
		day.Rain = false
		day.Snow = true
	}

	spring, autumn := c.FrostWindow(date.Year())
	doy := date.YearDay()
	day.FrostSeason = !(spring < doy && doy < autumn)
	return day
}

// anchorsFor interpolates the month's anchors toward the next month's
// through the days of the month.
func (c *Climate) anchorsFor(date time.Time) anchors {
	m := int(date.Month())
	cur, ok := c.tables.monthly[m]
	if !ok {
		cur = anchors{T06: 6, T14: 18, T22: 12}
	}
	nm := m%12 + 1
	nxt, ok := c.tables.monthly[nm]
	if !ok {
		nxt = cur
	}
	dim := daysInMonth(date)
	t := float64(date.Day()-1) / math.Max(1, float64(dim-1))
	return anchors{
		T06: lerp(cur.T06, nxt.T06, t),
		T14: lerp(cur.T14, nxt.T14, t),
		T22: lerp(cur.T22, nxt.T22, t),
	}
}

// applyAnomaly advances the AR(1) anomaly one step per new calendar day
// and shifts the whole curve by it.
func (c *Climate) applyAnomaly(date time.Time, hours [24]float64) [24]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	day := date.Truncate(24 * time.Hour)
	if c.anomDate.IsZero() || day.After(c.anomDate) {
		shock := c.anomRNG.NormFloat64() * anomalySigma
		c.anomaly = anomalyPhi*c.anomaly + (1-anomalyPhi)*shock
		c.anomDate = day
	}
	for i := range hours {
		hours[i] += c.anomaly
	}
	return hours
}

func (c *Climate) monthScalar(table map[int]float64, month int, def float64) float64 {
	if v, ok := table[month]; ok {
		return v
	}
	return def
}

// hourlyFromAnchors builds the 24-hour curve with cosine easing between
// 06:00, 14:00, 22:00 and the next morning's 06:00, then scales the
// diurnal amplitude around the mean.
func hourlyFromAnchors(a anchors, nextT06, ampScale float64) [24]float64 {
	var hours [24]float64
	piecewiseCosine(6, a.T06, 14, a.T14, &hours)
	piecewiseCosine(14, a.T14, 22, a.T22, &hours)

	// Night segment wraps 22:00 through 05:00.
	for k := 0; k < 8; k++ {
		x := float64(k) / 7.0
		v := a.T22 + (nextT06-a.T22)*(1-math.Cos(math.Pi*x))/2
		hours[(22+k)%24] = v
	}

	var mean float64
	for _, h := range hours {
		mean += h
	}
	mean /= 24
	for i := range hours {
		hours[i] = mean + (hours[i]-mean)*ampScale
	}
	return hours
}

func piecewiseCosine(t0 int, v0 float64, t1 int, v1 float64, hours *[24]float64) {
	span := t1 - t0
	for k, h := 0, t0; h < t1; k, h = k+1, h+1 {
		x := float64(k) / math.Max(1, float64(span-1))
		hours[h%24] = v0 + (v1-v0)*(1-math.Cos(math.Pi*x))/2
	}
}

// enforceMinAmplitude stretches unrealistically flat curves to a seasonal
// minimum diurnal range.
func enforceMinAmplitude(hours *[24]float64, month int) {
	var minAmp float64
	switch month {
	case 12, 1, 2:
		minAmp = 2.5
	case 3, 4, 10, 11:
		minAmp = 4.0
	default:
		minAmp = 6.0
	}

	var mean, lo, hi float64
	lo, hi = hours[0], hours[0]
	for _, h := range hours {
		mean += h
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	mean /= 24
	amp := hi - lo
	if amp <= 0 || amp >= minAmp {
		return
	}
	gain := math.Max(1.25, minAmp/math.Max(0.001, amp))
	for i := range hours {
		hours[i] = mean + (hours[i]-mean)*gain
	}
}

// eventDays deterministically places k event days in a month. The same
// seed, year, month and salt always place events on the same days.
func eventDays(seed int64, year, month, salt, daysInMonth, k int) map[int]bool {
	out := make(map[int]bool, k)
	if k <= 0 {
		return out
	}
	if k > daysInMonth {
		k = daysInMonth
	}
	r := rand.New(rand.NewSource(seed ^ int64(salt*1_000_000+year*100+month)))
	for _, d := range r.Perm(daysInMonth)[:k] {
		out[d+1] = true
	}
	return out
}

func daysInMonth(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, 0).Add(-time.Hour).Day()
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
