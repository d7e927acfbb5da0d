package core

import "gardencore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in garden
// policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(LineageIntegrityRule())
	engine.Register(PlotCapacityRule())
	engine.Register(PollinationWindowRule())
	return engine
}
