package core

import "gardencore/pkg/domain"

type (
	EntityType         = domain.EntityType
	GrowthStage        = domain.GrowthStage
	CrossKind          = domain.CrossKind
	Severity           = domain.Severity
	Base               = domain.Base
	Plant              = domain.Plant
	Plot               = domain.Plot
	Bed                = domain.Bed
	Seed               = domain.Seed
	SeedLot            = domain.SeedLot
	PollenPacket       = domain.PollenPacket
	AppliedPollen      = domain.AppliedPollen
	CrossRecord        = domain.CrossRecord
	SeasonRecord       = domain.SeasonRecord
	Change             = domain.Change
	Action             = domain.Action
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	Violation          = domain.Violation
	Result             = domain.Result
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityPlant        = domain.EntityPlant
	EntityPlot         = domain.EntityPlot
	EntityBed          = domain.EntityBed
	EntitySeedLot      = domain.EntitySeedLot
	EntityPollenPacket = domain.EntityPollenPacket
	EntitySeasonRecord = domain.EntitySeasonRecord
	EntityCrossRecord  = domain.EntityCrossRecord
)

const (
	StageSeed        = domain.StageSeed
	StageGermination = domain.StageGermination
	StageSeedling    = domain.StageSeedling
	StageYoungPlant  = domain.StageYoungPlant
	StageBudding     = domain.StageBudding
	StageFlowering   = domain.StageFlowering
	StagePodFill     = domain.StagePodFill
	StageMature      = domain.StageMature
)

const (
	CrossOutcross = domain.CrossOutcross
	CrossSelfing  = domain.CrossSelfing
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
