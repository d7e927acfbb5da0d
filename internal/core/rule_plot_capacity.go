package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// PlotCapacityRule enforces the one-plant-per-tile invariant and keeps
// beds within their laid-out plot capacity.
func PlotCapacityRule() domain.Rule {
	return plotCapacityRule{}
}

type plotCapacityRule struct{}

func (plotCapacityRule) Name() string { return "plot_capacity" }

func (plotCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	// Living plants per plot, counted from the plant side so stale
	// plot references surface too.
	occupants := make(map[string][]string)
	for _, plant := range view.ListPlants() {
		if plant.PlotID == nil || !plant.Alive {
			continue
		}
		occupants[*plant.PlotID] = append(occupants[*plant.PlotID], plant.ID)
	}
	for plotID, ids := range occupants {
		if len(ids) > 1 {
			res.Violations = append(res.Violations, plotViolation(domain.EntityPlot, plotID,
				fmt.Sprintf("plot %s hosts %d living plants", plotID, len(ids))))
		}
		if _, ok := view.FindPlot(plotID); !ok {
			res.Violations = append(res.Violations, plotViolation(domain.EntityPlant, ids[0],
				fmt.Sprintf("plant %s planted in missing plot %s", ids[0], plotID)))
		}
	}

	// Plot-side occupancy must agree with the plant records.
	for _, plot := range view.ListPlots() {
		if plot.PlantID == nil {
			continue
		}
		plant, ok := view.FindPlant(*plot.PlantID)
		if !ok {
			res.Violations = append(res.Violations, plotViolation(domain.EntityPlot, plot.ID,
				fmt.Sprintf("plot %s references missing plant %s", plot.ID, *plot.PlantID)))
			continue
		}
		if plant.PlotID == nil || *plant.PlotID != plot.ID {
			res.Violations = append(res.Violations, plotViolation(domain.EntityPlot, plot.ID,
				fmt.Sprintf("plot %s and plant %s disagree on placement", plot.ID, plant.ID)))
		}
	}

	// Beds cannot exceed their rectangle.
	plotsPerBed := make(map[string]int)
	for _, plot := range view.ListPlots() {
		plotsPerBed[plot.BedID]++
	}
	for _, bed := range view.ListBeds() {
		if count := plotsPerBed[bed.ID]; count > bed.Capacity() {
			res.Violations = append(res.Violations, plotViolation(domain.EntityBed, bed.ID,
				fmt.Sprintf("bed %s (%s) holds %d plots over capacity %d", bed.Name, bed.ID, count, bed.Capacity())))
		}
	}

	return res, nil
}

func plotViolation(entity domain.EntityType, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "plot_capacity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: entityID,
	}
}
