package core

import (
	"context"
	"fmt"
	"time"

	"gardencore/pkg/domain"
	"gardencore/pkg/genetics"
)

// Collected pollen stays viable for two days.
const PollenViability = 48 * time.Hour

// EmasculatePlant removes a plant's anthers so it can only set seed from
// applied pollen. Allowed during bud and early flowering.
func (s *Service) EmasculatePlant(ctx context.Context, plantID string) (Plant, Result, error) {
	var updated Plant
	res, err := s.run(ctx, "emasculate_plant", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePlant(plantID, func(p *Plant) error {
			if !p.Alive {
				return ErrInvalidOperation{Op: "emasculate_plant", Reason: "plant is dead"}
			}
			if p.Stage != StageBudding && p.Stage != StageFlowering {
				return ErrInvalidOperation{Op: "emasculate_plant",
					Reason: fmt.Sprintf("emasculate during bud or early flowering, not %s", p.Stage)}
			}
			if p.Emasculated {
				return ErrInvalidOperation{Op: "emasculate_plant", Reason: "already emasculated"}
			}
			p.Emasculated = true
			if p.Pollen == nil {
				p.PodCount = 0
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// CollectPollen gathers pollen from a flowering donor into a packet. The
// pollination window rule re-checks the donor inside the transaction.
func (s *Service) CollectPollen(ctx context.Context, donorID, label string) (PollenPacket, Result, error) {
	var created PollenPacket
	res, err := s.run(ctx, "collect_pollen", func(tx Transaction) error {
		donor, ok := tx.FindPlant(donorID)
		if !ok {
			return ErrNotFound{Entity: EntityPlant, ID: donorID}
		}
		now := s.now()
		var err error
		created, err = tx.CreatePollenPacket(PollenPacket{
			DonorID:     donorID,
			Label:       label,
			Genotype:    donor.Genotype.Clone(),
			Phases:      domain.ClonePhases(donor.Phases),
			Generation:  donor.Generation,
			CollectedAt: now,
			ViableUntil: now.Add(PollenViability),
		})
		return err
	})
	return created, res, err
}

// ApplyPollen brushes a collected packet onto an emasculated flowering
// mother, committing her ovules to the cross. The packet is spent either
// way.
func (s *Service) ApplyPollen(ctx context.Context, plantID, packetID string) (Plant, Result, error) {
	var updated Plant
	res, err := s.run(ctx, "apply_pollen", func(tx Transaction) error {
		snapshot := tx.Snapshot()
		packet, ok := snapshot.FindPollenPacket(packetID)
		if !ok {
			return ErrNotFound{Entity: EntityPollenPacket, ID: packetID}
		}
		now := s.now()
		if !packet.Viable(now) {
			return ErrInvalidOperation{Op: "apply_pollen", Reason: fmt.Sprintf("pollen packet %s is no longer viable", packetID)}
		}
		if packet.DonorID == plantID {
			return ErrInvalidOperation{Op: "apply_pollen", Reason: "use self-pollination for a plant's own pollen"}
		}

		var err error
		updated, err = tx.UpdatePlant(plantID, func(p *Plant) error {
			if !p.Alive {
				return ErrInvalidOperation{Op: "apply_pollen", Reason: "plant is dead"}
			}
			if p.Stage != StageFlowering {
				return ErrInvalidOperation{Op: "apply_pollen",
					Reason: fmt.Sprintf("apply pollen during flowering, not %s", p.Stage)}
			}
			if !p.Emasculated {
				return ErrInvalidOperation{Op: "apply_pollen", Reason: "emasculate the mother first to guarantee the cross"}
			}
			if p.Pollen != nil {
				return ErrInvalidOperation{Op: "apply_pollen", Reason: "plant is already pollinated"}
			}
			p.Pollen = &AppliedPollen{
				PacketID:   packet.ID,
				DonorID:    packet.DonorID,
				Kind:       CrossOutcross,
				Genotype:   packet.Genotype.Clone(),
				Phases:     domain.ClonePhases(packet.Phases),
				Generation: packet.Generation,
				AppliedAt:  now,
			}
			if p.PodCount == 0 {
				p.PodCount = s.drawPodCount()
			}
			return nil
		})
		if err != nil {
			return err
		}
		_, err = tx.UpdatePollenPacket(packetID, func(pk *PollenPacket) error {
			pk.Used = true
			return nil
		})
		return err
	})
	return updated, res, err
}

// SelfPollinate lets a flowering plant fertilise itself, the pea's
// natural habit.
func (s *Service) SelfPollinate(ctx context.Context, plantID string) (Plant, Result, error) {
	var updated Plant
	res, err := s.run(ctx, "self_pollinate", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdatePlant(plantID, func(p *Plant) error {
			if !p.Alive {
				return ErrInvalidOperation{Op: "self_pollinate", Reason: "plant is dead"}
			}
			if p.Stage != StageFlowering {
				return ErrInvalidOperation{Op: "self_pollinate",
					Reason: fmt.Sprintf("self-pollinate during flowering, not %s", p.Stage)}
			}
			if p.Emasculated {
				return ErrInvalidOperation{Op: "self_pollinate", Reason: "emasculated flowers produce no pollen"}
			}
			if p.Pollen != nil {
				return ErrInvalidOperation{Op: "self_pollinate", Reason: "plant is already pollinated"}
			}
			p.Pollen = &AppliedPollen{
				DonorID:    p.ID,
				Kind:       CrossSelfing,
				Genotype:   p.Genotype.Clone(),
				Phases:     domain.ClonePhases(p.Phases),
				Generation: p.Generation,
				AppliedAt:  s.now(),
			}
			if p.PodCount == 0 {
				p.PodCount = s.drawPodCount()
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// Harvest captures the outcome of harvesting a mature plant.
type Harvest struct {
	Lot   SeedLot
	Cross CrossRecord
}

// HarvestPods shells a mature plant's pods into a new seed lot. Each seed
// is an independent meiosis of the recorded mother and father, so
// segregation, assortment, and linkage all play out in the lot.
func (s *Service) HarvestPods(ctx context.Context, plantID string) (Harvest, Result, error) {
	var harvest Harvest
	res, err := s.run(ctx, "harvest_pods", func(tx Transaction) error {
		plant, ok := tx.FindPlant(plantID)
		if !ok {
			return ErrNotFound{Entity: EntityPlant, ID: plantID}
		}
		if plant.Stage < StageMature {
			return ErrInvalidOperation{Op: "harvest_pods",
				Reason: fmt.Sprintf("pods are not mature yet (stage %s)", plant.Stage)}
		}
		if plant.Harvested {
			return ErrInvalidOperation{Op: "harvest_pods", Reason: "plant was already harvested"}
		}
		if plant.Pollen == nil || plant.PodCount == 0 {
			return ErrInvalidOperation{Op: "harvest_pods", Reason: "plant set no seed"}
		}

		mother := plant.Organism()
		father := genetics.Organism{
			ID:         plant.Pollen.DonorID,
			Generation: plant.Pollen.Generation,
			Genotype:   plant.Pollen.Genotype.Clone(),
			Phases:     domain.ClonePhases(plant.Pollen.Phases),
		}

		// Each pod sets its own ovule count.
		var seeds []Seed
		for pod := 0; pod < plant.PodCount; pod++ {
			ovules := s.drawOvulesPerPod()
			for i := 0; i < ovules; i++ {
				child, err := s.registry.Breed(mother, father, s.rng)
				if err != nil {
					return fmt.Errorf("harvesting %s: %w", plantID, err)
				}
				parentIDs := child.ParentIDs
				if plant.Pollen.Kind == CrossSelfing {
					parentIDs = []string{plant.ID}
				}
				seeds = append(seeds, Seed{
					Genotype:   child.Genotype,
					Phases:     child.Phases,
					Generation: child.Generation,
					ParentIDs:  parentIDs,
				})
			}
		}

		lot, err := tx.CreateSeedLot(SeedLot{
			Name:   fmt.Sprintf("harvest of %s", plantLabel(plant)),
			Origin: string(plant.Pollen.Kind),
			Seeds:  seeds,
		})
		if err != nil {
			return err
		}
		cross, err := tx.CreateCrossRecord(CrossRecord{
			MotherID:  plant.ID,
			FatherID:  plant.Pollen.DonorID,
			Kind:      plant.Pollen.Kind,
			Year:      s.now().Year(),
			SeedLotID: &lot.ID,
			SeedCount: len(seeds),
		})
		if err != nil {
			return err
		}
		if _, err := tx.UpdatePlant(plantID, func(p *Plant) error {
			p.Harvested = true
			return nil
		}); err != nil {
			return err
		}
		harvest = Harvest{Lot: lot, Cross: cross}
		return nil
	})
	return harvest, res, err
}

func plantLabel(p Plant) string {
	if p.Label != "" {
		return p.Label
	}
	return p.ID
}
