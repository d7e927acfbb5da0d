package climate

import (
	"embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

//go:embed data/*.csv
var dataFS embed.FS

type anchorRow struct {
	Month int     `csv:"month"`
	T06   float64 `csv:"T06_C"`
	T14   float64 `csv:"T14_C"`
	T22   float64 `csv:"T22_C"`
}

type cloudRow struct {
	Month int     `csv:"month"`
	Mean  float64 `csv:"cloud_mean_0_10"`
}

type rainRow struct {
	Month   int     `csv:"month"`
	TotalMM float64 `csv:"rain_mm_total"`
	Days    float64 `csv:"rain_days"`
}

type snowRow struct {
	Month int     `csv:"month"`
	Days  float64 `csv:"snow_days"`
}

type thunderRow struct {
	Month int     `csv:"month"`
	Days  float64 `csv:"thunder_days"`
}

type hailRow struct {
	Month int     `csv:"month"`
	Days  float64 `csv:"hail_days"`
}

type frostRow struct {
	Year      int `csv:"year"`
	SpringDOY int `csv:"last_spring_frost_day"`
	AutumnDOY int `csv:"first_autumn_frost_day"`
}

// anchors holds one month's temperature anchors at 06:00, 14:00 and 22:00.
type anchors struct {
	T06, T14, T22 float64
}

// tables is the loaded Brno climatology.
type tables struct {
	monthly map[int]anchors
	cloud   map[int]float64
	rain    map[int]rainRow
	snow    map[int]float64
	thunder map[int]float64
	hail    map[int]float64
	frost   map[int]frostRow
}

func loadCSV[T any](name string) ([]T, error) {
	raw, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading climate table %s: %w", name, err)
	}
	var rows []T
	if err := gocsv.UnmarshalBytes(raw, &rows); err != nil {
		return nil, fmt.Errorf("parsing climate table %s: %w", name, err)
	}
	return rows, nil
}

func loadTables() (*tables, error) {
	t := &tables{
		monthly: map[int]anchors{},
		cloud:   map[int]float64{},
		rain:    map[int]rainRow{},
		snow:    map[int]float64{},
		thunder: map[int]float64{},
		hail:    map[int]float64{},
		frost:   map[int]frostRow{},
	}

	anchorRows, err := loadCSV[anchorRow]("monthly_anchors.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range anchorRows {
		t.monthly[r.Month] = anchors{T06: r.T06, T14: r.T14, T22: r.T22}
	}
	if len(t.monthly) != 12 {
		return nil, fmt.Errorf("monthly anchors cover %d months, want 12", len(t.monthly))
	}

	cloudRows, err := loadCSV[cloudRow]("cloudiness.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range cloudRows {
		t.cloud[r.Month] = r.Mean
	}

	rainRows, err := loadCSV[rainRow]("rain.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range rainRows {
		t.rain[r.Month] = r
	}

	snowRows, err := loadCSV[snowRow]("snow_days.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range snowRows {
		t.snow[r.Month] = r.Days
	}

	thunderRows, err := loadCSV[thunderRow]("thunder_days.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range thunderRows {
		t.thunder[r.Month] = r.Days
	}

	hailRows, err := loadCSV[hailRow]("hail_days.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range hailRows {
		t.hail[r.Month] = r.Days
	}

	frostRows, err := loadCSV[frostRow]("frost_window.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range frostRows {
		t.frost[r.Year] = r
	}

	return t, nil
}
