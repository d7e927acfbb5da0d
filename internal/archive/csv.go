package archive

import (
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"

	"gardencore/pkg/genetics"
)

// plantRow is the CSV projection of one archived plant. Phenotype
// columns carry the expressed value or empty when unresolved.
type plantRow struct {
	ID             string  `csv:"plant_id"`
	Label          string  `csv:"label"`
	Generation     int     `csv:"generation"`
	Parents        string  `csv:"parents"`
	Stage          string  `csv:"stage"`
	Alive          bool    `csv:"alive"`
	CauseOfDeath   string  `csv:"cause_of_death"`
	AgeDays        int     `csv:"age_days"`
	GDD            float64 `csv:"gdd"`
	Health         float64 `csv:"health"`
	PodCount       int     `csv:"pod_count"`
	Harvested      bool    `csv:"harvested"`
	SeedShape      string  `csv:"seed_shape"`
	SeedColor      string  `csv:"seed_color"`
	FlowerColor    string  `csv:"flower_color"`
	PlantHeight    string  `csv:"plant_height"`
	PodColor       string  `csv:"pod_color"`
	PodShape       string  `csv:"pod_shape"`
	FlowerPosition string  `csv:"flower_position"`
}

// crossRow is the CSV projection of one archived cross record.
type crossRow struct {
	ID        string `csv:"cross_id"`
	Kind      string `csv:"kind"`
	Year      int    `csv:"year"`
	MotherID  string `csv:"mother_id"`
	FatherID  string `csv:"father_id"`
	SeedLotID string `csv:"seed_lot_id"`
	SeedCount int    `csv:"seed_count"`
}

func marshalPlantRows(snap Snapshot) ([]byte, error) {
	rows := make([]plantRow, 0, len(snap.Plants))
	for _, p := range snap.Plants {
		row := plantRow{
			ID:             p.ID,
			Label:          p.Label,
			Generation:     p.Generation,
			Parents:        strings.Join(p.ParentIDs, "|"),
			Stage:          p.Stage.String(),
			Alive:          p.Alive,
			AgeDays:        p.AgeDays,
			GDD:            p.GDD,
			Health:         p.Health,
			PodCount:       p.PodCount,
			Harvested:      p.Harvested,
			SeedShape:      p.Phenotype[genetics.CharSeedShape],
			SeedColor:      p.Phenotype[genetics.CharSeedColor],
			FlowerColor:    p.Phenotype[genetics.CharFlowerColor],
			PlantHeight:    p.Phenotype[genetics.CharPlantHeight],
			PodColor:       p.Phenotype[genetics.CharPodColor],
			PodShape:       p.Phenotype[genetics.CharPodShape],
			FlowerPosition: p.Phenotype[genetics.CharFlowerPosition],
		}
		if p.CauseOfDeath != nil {
			row.CauseOfDeath = *p.CauseOfDeath
		}
		rows = append(rows, row)
	}
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("encoding plant rows: %w", err)
	}
	return b, nil
}

func marshalCrossRows(snap Snapshot) ([]byte, error) {
	rows := make([]crossRow, 0, len(snap.Crosses))
	for _, c := range snap.Crosses {
		row := crossRow{
			ID:        c.ID,
			Kind:      string(c.Kind),
			Year:      c.Year,
			MotherID:  c.MotherID,
			FatherID:  c.FatherID,
			SeedCount: c.SeedCount,
		}
		if c.SeedLotID != nil {
			row.SeedLotID = *c.SeedLotID
		}
		rows = append(rows, row)
	}
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("encoding cross rows: %w", err)
	}
	return b, nil
}
