package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// LineageIntegrityRule enforces parent/offspring constraints across the
// garden: no self-parenting, no duplicate parents, and generations that
// only move forward.
func LineageIntegrityRule() domain.Rule {
	return lineageIntegrityRule{}
}

type lineageIntegrityRule struct{}

func (lineageIntegrityRule) Name() string { return "lineage_integrity" }

func (lineageIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	plants := view.ListPlants()
	index := make(map[string]domain.Plant, len(plants))
	for _, p := range plants {
		index[p.ID] = p
	}

	for _, child := range plants {
		if len(child.ParentIDs) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(child.ParentIDs))
		for _, parentID := range child.ParentIDs {
			if parentID == "" {
				continue
			}
			if parentID == child.ID {
				res.Violations = append(res.Violations, lineageViolation(domain.SeverityBlock, child.ID,
					fmt.Sprintf("plant %s references itself as a parent", child.ID)))
				continue
			}
			if _, dup := seen[parentID]; dup {
				res.Violations = append(res.Violations, lineageViolation(domain.SeverityBlock, child.ID,
					fmt.Sprintf("plant %s lists parent %s multiple times", child.ID, parentID)))
				continue
			}
			seen[parentID] = struct{}{}

			// Parents routinely leave the garden between seasons; a
			// missing parent is noted, not blocked.
			parent, ok := index[parentID]
			if !ok {
				res.Violations = append(res.Violations, lineageViolation(domain.SeverityLog, child.ID,
					fmt.Sprintf("plant %s references parent %s outside the garden", child.ID, parentID)))
				continue
			}
			if child.Generation <= parent.Generation {
				res.Violations = append(res.Violations, lineageViolation(domain.SeverityBlock, child.ID,
					fmt.Sprintf("plant %s generation F%d does not follow parent %s at F%d",
						child.ID, child.Generation, parentID, parent.Generation)))
			}
		}
	}

	return res, nil
}

func lineageViolation(sev domain.Severity, entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "lineage_integrity",
		Severity: sev,
		Message:  message,
		Entity:   domain.EntityPlant,
		EntityID: entityID,
	}
}
