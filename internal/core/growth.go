package core

import (
	"context"
	"fmt"

	"gardencore/internal/season"
	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

// Water and health bounds for a plant record.
const (
	waterInitial = 50.0
	waterMax     = 100.0
	healthMax    = 100.0
)

// SowSeed draws the next seed from a lot and plants it in a free plot.
// Seeds carrying an exact genotype keep their recorded lineage; observed
// founder seed has its genotype inferred from phenotype at this moment.
func (s *Service) SowSeed(ctx context.Context, seedLotID, plotID, label string) (Plant, Result, error) {
	var created Plant
	res, err := s.run(ctx, "sow_seed", func(tx Transaction) error {
		lot, ok := tx.FindSeedLot(seedLotID)
		if !ok {
			return ErrNotFound{Entity: EntitySeedLot, ID: seedLotID}
		}
		if lot.Count() == 0 {
			return ErrInvalidOperation{Op: "sow_seed", Reason: fmt.Sprintf("seed lot %s is empty", seedLotID)}
		}
		plot, ok := tx.FindPlot(plotID)
		if !ok {
			return ErrNotFound{Entity: EntityPlot, ID: plotID}
		}
		if plot.Occupied() {
			return ErrInvalidOperation{Op: "sow_seed", Reason: fmt.Sprintf("plot %s is occupied", plotID)}
		}

		seed := lot.Seeds[0]
		if _, err := tx.UpdateSeedLot(seedLotID, func(l *SeedLot) error {
			l.Seeds = l.Seeds[1:]
			return nil
		}); err != nil {
			return err
		}

		geno := seed.Genotype
		if len(geno) == 0 {
			geno = genetics.PeaGenotypeFromTraits(seed.ObservedTraits, s.rng)
		}
		founder, err := s.registry.SeedFounder(geno)
		if err != nil {
			return fmt.Errorf("sowing from lot %s: %w", seedLotID, err)
		}
		phases := founder.Phases
		if len(seed.Phases) > 0 {
			phases = domain.ClonePhases(seed.Phases)
		}

		tracker := season.NewTracker(s.rng)
		now := s.now()
		created, err = tx.CreatePlant(Plant{
			Label:             label,
			Generation:        seed.Generation,
			ParentIDs:         append([]string(nil), seed.ParentIDs...),
			SeedLotID:         &seedLotID,
			PlotID:            &plotID,
			Genotype:          founder.Genotype,
			Phenotype:         founder.Phenotype,
			Phases:            phases,
			Stage:             StageSeed,
			GDDTarget:         tracker.Threshold,
			Water:             waterInitial,
			Health:            healthMax,
			Alive:             true,
			SownAt:            now,
			LifespanDays:      tracker.LifespanDays,
			SenescenceCapDays: tracker.SenescenceCap,
		})
		if err != nil {
			return err
		}
		_, err = tx.UpdatePlot(plotID, func(p *Plot) error {
			p.PlantID = &created.ID
			return nil
		})
		return err
	})
	return created, res, err
}

// RecordGermination advances a sown seed to the germination stage.
func (s *Service) RecordGermination(ctx context.Context, plantID string) (Plant, Result, error) {
	var updated Plant
	res, err := s.run(ctx, "record_germination", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePlant(plantID, func(p *Plant) error {
			if !p.Alive {
				return ErrInvalidOperation{Op: "record_germination", Reason: "plant is dead"}
			}
			if p.Stage != StageSeed {
				return ErrInvalidOperation{Op: "record_germination", Reason: fmt.Sprintf("plant is already %s", p.Stage)}
			}
			p.Stage = StageGermination
			return nil
		})
		return err
	})
	return updated, res, err
}

// WaterPlant tops up a plant's water by hand. Watering under the midday
// sun scorches the foliage.
func (s *Service) WaterPlant(ctx context.Context, plantID string, phase season.DayPhase) (Plant, Result, error) {
	var updated Plant
	res, err := s.run(ctx, "water_plant", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePlant(plantID, func(p *Plant) error {
			if !p.Alive {
				return ErrInvalidOperation{Op: "water_plant", Reason: "plant is dead"}
			}
			p.Water = minF(waterMax, p.Water+season.WateringAmount)
			if penalty := season.WateringPenalty(phase, int(p.Health), s.rng); penalty > 0 {
				s.applyHealthDelta(p, -penalty, "scorched by midday watering")
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// TickHour integrates one simulated hour of evaporation and water-driven
// health change for every living plant.
func (s *Service) TickHour(ctx context.Context, tempC float64, sky season.Sky) (Result, error) {
	return s.run(ctx, "tick_hour", func(tx Transaction) error {
		for _, plant := range tx.Snapshot().ListPlants() {
			if !plant.Alive {
				continue
			}
			_, err := tx.UpdatePlant(plant.ID, func(p *Plant) error {
				p.Water = maxF(0, p.Water-season.HourlyEvaporation(tempC, sky))
				p.Water += float64(season.RainTopUp(sky, int(p.Water)))
				s.applyHealthDelta(p, season.WaterHealthDelta(int(p.Water)), waterDeathCause(p.Water))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func waterDeathCause(water float64) string {
	if water > 85 {
		return "waterlogged"
	}
	return "dried out"
}

// DaySummary reports the day rollover across the whole garden.
type DaySummary struct {
	Survivors    int
	Deaths       []string
	StageChanges map[string]GrowthStage
}

// AdvanceDay rolls the garden over to a new day: soil readings propagate
// to plots, and every living plant accumulates degree days, advances
// stages, and weathers the day's stress events.
func (s *Service) AdvanceDay(ctx context.Context, w season.Weather, soil season.Soil, gddInc float64) (DaySummary, Result, error) {
	summary := DaySummary{StageChanges: map[string]GrowthStage{}}
	res, err := s.run(ctx, "advance_day", func(tx Transaction) error {
		summary = DaySummary{StageChanges: map[string]GrowthStage{}}
		for _, plot := range tx.Snapshot().ListPlots() {
			if _, err := tx.UpdatePlot(plot.ID, func(p *Plot) error {
				p.SoilMoisture = soil.Moisture
				p.SoilTempC = soil.TempC
				return nil
			}); err != nil {
				return err
			}
		}

		for _, plant := range tx.Snapshot().ListPlants() {
			if !plant.Alive {
				continue
			}
			_, err := tx.UpdatePlant(plant.ID, func(p *Plant) error {
				tracker := season.TrackerFor(*p)
				out := tracker.AdvanceDay(gddInc, w, s.rng)

				p.GDD = tracker.GDD
				p.AgeDays = tracker.AgeDays
				p.SenescentDays = tracker.SenescentDays
				p.Stress = tracker.StressIndex
				p.StressStreak = tracker.StressStreak
				if tracker.Stage > p.Stage {
					p.Stage = tracker.Stage
					summary.StageChanges[p.ID] = p.Stage
				}
				s.onStageTransitions(p, out.Transitions)

				if out.Died {
					s.markDead(p, out.Cause)
				} else if out.HealthDelta != 0 {
					s.applyHealthDelta(p, out.HealthDelta, out.Event.String())
				}
				if p.Alive {
					summary.Survivors++
				} else {
					summary.Deaths = append(summary.Deaths, p.ID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return summary, res, err
}

// onStageTransitions applies side effects of entering new stages. Pod fill
// starts pod development; plants that kept their anthers self-pollinate on
// the way in, emasculated and unpollinated plants stay barren.
func (s *Service) onStageTransitions(p *Plant, transitions []GrowthStage) {
	for _, stage := range transitions {
		if stage != StagePodFill {
			continue
		}
		if p.Pollen == nil && !p.Emasculated {
			p.Pollen = &AppliedPollen{
				DonorID:    p.ID,
				Kind:       CrossSelfing,
				Genotype:   p.Genotype.Clone(),
				Phases:     domain.ClonePhases(p.Phases),
				Generation: p.Generation,
				AppliedAt:  s.now(),
			}
		}
		if p.Pollen != nil && p.PodCount == 0 {
			p.PodCount = s.drawPodCount()
		}
	}
}

// Mendel-era averages: about ten pods per plant, around seven ovules per
// pod.
func (s *Service) drawPodCount() int {
	return clampInt(int(gauss(s.rng, 10, 2)+0.5), 5, 20)
}

func (s *Service) drawOvulesPerPod() int {
	return clampInt(int(gauss(s.rng, 7, 2)+0.5), 5, 12)
}

func (s *Service) applyHealthDelta(p *Plant, delta int, cause string) {
	if delta == 0 || !p.Alive {
		return
	}
	p.Health = minF(healthMax, maxF(0, p.Health+float64(delta)))
	if p.Health <= 0 {
		s.markDead(p, cause)
	}
}

func (s *Service) markDead(p *Plant, cause string) {
	if !p.Alive {
		return
	}
	p.Alive = false
	p.Health = 0
	if cause != "" {
		p.CauseOfDeath = &cause
	}
	// A plant that dies before setting seed yields nothing.
	if p.Stage < StageMature {
		p.PodCount = 0
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
