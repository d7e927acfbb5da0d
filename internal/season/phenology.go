// Package season models pea phenology for a Brno garden: growing degree
// day accumulation, stage transitions, frost and heat stress, senescence,
// and the soil state that gates sowing. All randomness flows through an
// injected genetics.RandomSource so simulations stay reproducible.
package season

import (
	"fmt"

	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

// Growing degree day accumulation and stage thresholds. Degrees above
// BaseTempC accumulate daily from soil temperature; a plant matures when
// its accumulated GDD reaches a per-plant threshold drawn from
// ThresholdRange at sowing.
const (
	BaseTempC = 2.0

	ThresholdMin = 820.0
	ThresholdMax = 980.0
)

// Fractions of the GDD threshold at which growth stages begin. Flowering
// and pod fill follow the field model for spring peas; the earlier stages
// are spaced to match observed seedling timing.
const (
	fracGermination = 0.04
	fracSeedling    = 0.12
	fracYoungPlant  = 0.25
	fracBudding     = 0.36
	fracFlowering   = 0.45
	fracPodFill     = 0.75
	fracMature      = 1.0
)

// Lifespan and senescence caps, in days. A plant withers once its total
// age exceeds the lifespan cap or once it has been senescent longer than
// its senescence cap, whichever comes first.
const (
	LifespanMinDays = 75
	LifespanMaxDays = 100

	SenescenceMinDays = 20
	SenescenceMaxDays = 40
)

// Cumulative stress model. Each stress day adds a weighted load to the
// plant's stress index; quiet days decay it. Crossing either the index or
// the streak bound kills the plant, and the chronic zone below that causes
// a slow daily decline.
const (
	frostStressWeight = 1.3
	heatStressWeight  = 0.7

	stressDecayPerDay = 0.98
	stressMortality   = 4.0
	streakMortality   = 4
	chronicZone       = 3.0
)

// Stage stress multipliers. Reproductive and senescent plants take frost
// and heat harder than vegetative ones.
func stageStressMult(stage domain.GrowthStage, senescent bool) float64 {
	if senescent {
		return 2.0
	}
	switch {
	case stage >= domain.StagePodFill:
		return 2.0
	case stage >= domain.StageFlowering:
		return 1.5
	default:
		return 1.0
	}
}

// Event classifies the day's weather as it affects a growing plant.
type Event int

const (
	EventNormal Event = iota
	EventFrost
	EventHeat
	EventLethalFreeze
)

func (e Event) String() string {
	switch e {
	case EventFrost:
		return "frost damage"
	case EventHeat:
		return "heat stress"
	case EventLethalFreeze:
		return "lethal freeze"
	default:
		return "normal"
	}
}

// Weather is one day of conditions as the garden sees them.
type Weather struct {
	MeanC       float64
	MinC        float64
	MaxC        float64
	NoonC       float64
	RainMM      float64
	Cloud       float64
	AmpScale    float64
	FrostSeason bool
}

// Classify maps a day's temperature extrema to a stress event. Overnight
// minima drive frost; afternoon maxima drive heat.
func Classify(w Weather) Event {
	switch {
	case w.MinC < -15.0:
		return EventLethalFreeze
	case w.MinC < 0.0:
		return EventFrost
	case w.MaxC > 34.0:
		return EventHeat
	default:
		return EventNormal
	}
}

// LethalDelta is the health delta used when an event kills outright.
const LethalDelta = -9999

// EventHealthDelta returns the immediate health hit for a stress event.
func EventHealthDelta(ev Event, rng genetics.RandomSource) int {
	switch ev {
	case EventLethalFreeze:
		return LethalDelta
	case EventFrost:
		return -(4 + rng.Intn(9))
	case EventHeat:
		return -(1 + rng.Intn(4))
	default:
		return 0
	}
}

// Tracker carries the phenological state of one plant across days. Every
// field round-trips through the persisted plant record so a garden can be
// reloaded mid-season without losing phenology.
type Tracker struct {
	GDD           float64
	Threshold     float64
	Stage         domain.GrowthStage
	AgeDays       int
	LifespanDays  int
	SenescentDays int
	SenescenceCap int
	StressIndex   float64
	StressStreak  int
	Dead          bool
	Cause         string
}

// Senescent reports whether the plant has reached maturity and begun its
// decline.
func (t Tracker) Senescent() bool { return t.GDD >= t.Threshold }

// NewTracker draws the per-plant thresholds and caps for a freshly sown
// seed.
func NewTracker(rng genetics.RandomSource) Tracker {
	return Tracker{
		Threshold:     ThresholdMin + rng.Float64()*(ThresholdMax-ThresholdMin),
		Stage:         domain.StageSeed,
		LifespanDays:  LifespanMinDays + rng.Intn(LifespanMaxDays-LifespanMinDays+1),
		SenescenceCap: SenescenceMinDays + rng.Intn(SenescenceMaxDays-SenescenceMinDays+1),
	}
}

// TrackerFor rebuilds a tracker from a persisted plant record.
func TrackerFor(p domain.Plant) Tracker {
	t := Tracker{
		GDD:           p.GDD,
		Threshold:     p.GDDTarget,
		Stage:         p.Stage,
		AgeDays:       p.AgeDays,
		LifespanDays:  p.LifespanDays,
		SenescentDays: p.SenescentDays,
		SenescenceCap: p.SenescenceCapDays,
		StressIndex:   p.Stress,
		StressStreak:  p.StressStreak,
		Dead:          !p.Alive,
	}
	if t.Threshold <= 0 {
		t.Threshold = (ThresholdMin + ThresholdMax) / 2
	}
	if t.LifespanDays <= 0 {
		t.LifespanDays = LifespanMinDays
	}
	if t.SenescenceCap <= 0 {
		t.SenescenceCap = (SenescenceMinDays + SenescenceMaxDays) / 2
	}
	return t
}

// Outcome reports what one day did to a plant.
type Outcome struct {
	Stage       domain.GrowthStage
	Transitions []domain.GrowthStage
	Event       Event
	HealthDelta int
	Died        bool
	Cause       string
}

// stageForFraction returns the furthest stage reached at a given fraction
// of the GDD threshold.
func stageForFraction(frac float64) domain.GrowthStage {
	switch {
	case frac >= fracMature:
		return domain.StageMature
	case frac >= fracPodFill:
		return domain.StagePodFill
	case frac >= fracFlowering:
		return domain.StageFlowering
	case frac >= fracBudding:
		return domain.StageBudding
	case frac >= fracYoungPlant:
		return domain.StageYoungPlant
	case frac >= fracSeedling:
		return domain.StageSeedling
	case frac >= fracGermination:
		return domain.StageGermination
	default:
		return domain.StageSeed
	}
}

// AdvanceDay integrates one day of weather into the tracker: lifespan and
// senescence caps first, then GDD accumulation and stage transitions, then
// the stress ledger. soilGDDInc is the day's degree contribution from soil
// temperature.
func (t *Tracker) AdvanceDay(soilGDDInc float64, w Weather, rng genetics.RandomSource) Outcome {
	out := Outcome{Stage: t.Stage, Event: Classify(w)}
	if t.Dead {
		out.Died = true
		out.Cause = t.Cause
		return out
	}

	t.AgeDays++
	if t.AgeDays > t.LifespanDays {
		t.kill(fmt.Sprintf("lifespan exceeded (%dd > %dd)", t.AgeDays, t.LifespanDays))
		return t.deadOutcome(out)
	}
	if t.Senescent() {
		t.SenescentDays++
		if t.SenescentDays > t.SenescenceCap {
			t.kill(fmt.Sprintf("senescence exceeded (%dd cap)", t.SenescenceCap))
			return t.deadOutcome(out)
		}
	}

	t.GDD += maxFloat(0, soilGDDInc)
	frac := t.GDD / maxFloat(1, t.Threshold)
	for next := stageForFraction(frac); t.Stage < next; {
		t.Stage++
		out.Transitions = append(out.Transitions, t.Stage)
	}
	out.Stage = t.Stage

	switch out.Event {
	case EventLethalFreeze:
		t.kill("killed by severe freeze")
		out.HealthDelta = LethalDelta
		return t.deadOutcome(out)
	case EventFrost, EventHeat:
		out.HealthDelta = EventHealthDelta(out.Event, rng)
		weight := heatStressWeight
		if out.Event == EventFrost {
			weight = frostStressWeight
		}
		t.StressIndex += weight * stageStressMult(t.Stage, t.Senescent())
		t.StressStreak++
		if t.StressIndex >= stressMortality || t.StressStreak >= streakMortality {
			t.kill("succumbed to accumulated stress")
			out.HealthDelta = LethalDelta
			return t.deadOutcome(out)
		}
		if t.StressIndex >= chronicZone {
			out.HealthDelta -= 2 + rng.Intn(3)
		}
	default:
		t.StressIndex *= stressDecayPerDay
	}

	if t.Senescent() {
		out.HealthDelta -= 2 + rng.Intn(5)
	}
	return out
}

func (t *Tracker) kill(cause string) {
	t.Dead = true
	t.Cause = cause
}

func (t *Tracker) deadOutcome(out Outcome) Outcome {
	out.Died = true
	out.Cause = t.Cause
	out.Stage = t.Stage
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
