package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// PollinationWindowRule guards the crossing protocol: emasculated flowers
// that were never pollinated must carry no pods, pollen must come from a
// healthy flowering donor that kept its anthers, and applied pollen only
// makes sense on a flowering or later plant.
func PollinationWindowRule() domain.Rule {
	return pollinationWindowRule{}
}

// Pollen collection requires donor health at or above this floor.
const pollenHealthFloor = 70.0

type pollinationWindowRule struct{}

func (pollinationWindowRule) Name() string { return "pollination_window" }

func (pollinationWindowRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, plant := range view.ListPlants() {
		if plant.Emasculated && plant.Pollen == nil && plant.PodCount != 0 {
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPlant, plant.ID,
				fmt.Sprintf("emasculated plant %s carries %d pods without pollination", plant.ID, plant.PodCount)))
		}
		if plant.Pollen != nil && plant.Stage < domain.StageFlowering {
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPlant, plant.ID,
				fmt.Sprintf("plant %s has applied pollen before flowering (stage %s)", plant.ID, plant.Stage)))
		}
		if plant.Pollen != nil && plant.Pollen.Kind == domain.CrossSelfing && plant.Emasculated {
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPlant, plant.ID,
				fmt.Sprintf("emasculated plant %s cannot self-pollinate", plant.ID)))
		}
	}

	// Collection-time checks run against the donor's state in the same
	// snapshot the packet was created in.
	for _, change := range changes {
		if change.Entity != domain.EntityPollenPacket || change.Action != domain.ActionCreate {
			continue
		}
		packet, ok := change.After.(domain.PollenPacket)
		if !ok {
			continue
		}
		donor, ok := view.FindPlant(packet.DonorID)
		if !ok {
			continue
		}
		switch {
		case donor.Emasculated:
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPollenPacket, packet.ID,
				fmt.Sprintf("pollen packet %s collected from emasculated donor %s", packet.ID, donor.ID)))
		case !donor.Alive:
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPollenPacket, packet.ID,
				fmt.Sprintf("pollen packet %s collected from dead donor %s", packet.ID, donor.ID)))
		case donor.Stage != domain.StageFlowering:
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPollenPacket, packet.ID,
				fmt.Sprintf("pollen packet %s collected outside flowering (donor stage %s)", packet.ID, donor.Stage)))
		case donor.Health < pollenHealthFloor:
			res.Violations = append(res.Violations, pollinationViolation(domain.EntityPollenPacket, packet.ID,
				fmt.Sprintf("pollen packet %s collected from weak donor %s (health %.0f)", packet.ID, donor.ID, donor.Health)))
		}
	}

	return res, nil
}

func pollinationViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "pollination_window",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}
