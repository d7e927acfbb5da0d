package climate

import (
	"testing"
	"time"
)

func mustClimate(t *testing.T, cfg Config) *Climate {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("loading climatology: %v", err)
	}
	return c
}

func TestSeasonalCycle(t *testing.T) {
	c := mustClimate(t, Config{})

	jan := c.DailyState(time.Date(1856, time.January, 15, 0, 0, 0, 0, time.UTC))
	jul := c.DailyState(time.Date(1856, time.July, 15, 0, 0, 0, 0, time.UTC))

	if jan.MeanC() >= jul.MeanC() {
		t.Fatalf("january mean %.1f not below july mean %.1f", jan.MeanC(), jul.MeanC())
	}
	if jul.MeanC() < 12 || jul.MeanC() > 28 {
		t.Fatalf("july mean %.1f outside plausible Brno range", jul.MeanC())
	}
	if jan.MeanC() > 5 {
		t.Fatalf("january mean %.1f too warm", jan.MeanC())
	}
}

func TestDiurnalCurveShape(t *testing.T) {
	c := mustClimate(t, Config{})
	day := c.DailyState(time.Date(1856, time.May, 20, 0, 0, 0, 0, time.UTC))

	if day.MaxC() <= day.MinC() {
		t.Fatal("flat diurnal curve")
	}
	// Afternoon is the warm part of the day in spring.
	if day.Hours[14] <= day.Hours[4] {
		t.Fatalf("14:00 (%.1f) not warmer than 04:00 (%.1f)", day.Hours[14], day.Hours[4])
	}
	// May minimum amplitude is 6 degrees.
	if amp := day.MaxC() - day.MinC(); amp < 6 {
		t.Fatalf("may diurnal amplitude %.1f below enforced minimum", amp)
	}
}

func TestDeterministicUnderSeed(t *testing.T) {
	a := mustClimate(t, Config{Mode: ModeStochastic, Seed: 7})
	b := mustClimate(t, Config{Mode: ModeStochastic, Seed: 7})

	date := time.Date(1857, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		da := a.DailyState(date)
		db := b.DailyState(date)
		if da != db {
			t.Fatalf("day %d diverged under identical seeds", i)
		}
		date = date.AddDate(0, 0, 1)
	}
}

func TestStochasticModePerturbs(t *testing.T) {
	hist := mustClimate(t, Config{Mode: ModeHistorical, Seed: 7})
	stoch := mustClimate(t, Config{Mode: ModeStochastic, Seed: 7})

	var diverged bool
	date := time.Date(1857, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		if hist.DailyState(date).Hours != stoch.DailyState(date).Hours {
			diverged = true
			break
		}
		date = date.AddDate(0, 0, 1)
	}
	if !diverged {
		t.Fatal("stochastic mode never deviated from climatology")
	}
}

func TestFrostWindow(t *testing.T) {
	c := mustClimate(t, Config{})

	spring, autumn := c.FrostWindow(1856)
	if spring != 119 || autumn != 289 {
		t.Fatalf("1856 frost window = (%d, %d), want (119, 289)", spring, autumn)
	}
	spring, autumn = c.FrostWindow(1900)
	if spring != 122 || autumn != 286 {
		t.Fatalf("fallback frost window = (%d, %d), want (122, 286)", spring, autumn)
	}

	midsummer := time.Date(1856, time.July, 1, 0, 0, 0, 0, time.UTC)
	if c.DailyState(midsummer).FrostSeason {
		t.Fatal("july flagged as frost season")
	}
	january := time.Date(1856, time.January, 10, 0, 0, 0, 0, time.UTC)
	if !c.DailyState(january).FrostSeason {
		t.Fatal("january not flagged as frost season")
	}
	if c.FrostFreeDays(midsummer) != 289-midsummer.YearDay() {
		t.Fatalf("frost-free days = %d", c.FrostFreeDays(midsummer))
	}
}

func TestEventFrequencies(t *testing.T) {
	c := mustClimate(t, Config{})

	var julyRain, janSnow int
	for d := 1; d <= 31; d++ {
		if c.DailyState(time.Date(1856, time.July, d, 0, 0, 0, 0, time.UTC)).Rain {
			julyRain++
		}
		if c.DailyState(time.Date(1856, time.January, d, 0, 0, 0, 0, time.UTC)).Snow {
			janSnow++
		}
	}
	// July climatology carries 10 rain days; a few can convert on cold
	// outliers but the bulk must survive.
	if julyRain < 7 || julyRain > 10 {
		t.Fatalf("july rain days = %d, want near 10", julyRain)
	}
	if janSnow == 0 {
		t.Fatal("no january snow days")
	}
}
