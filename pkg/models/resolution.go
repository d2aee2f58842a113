package models

import (
	"time"
)

// ResolveStrategy selects which merge strategy consolidates a batch
type ResolveStrategy string

const (
	// ResolveStrategyRules folds records with the boolean identity rules, first match wins
	ResolveStrategyRules ResolveStrategy = "rules"
	// ResolveStrategyScored pairs records with their best-scoring partner
	ResolveStrategyScored ResolveStrategy = "scored"
)

// IsValid reports whether the strategy is known
func (s ResolveStrategy) IsValid() bool {
	return s == ResolveStrategyRules || s == ResolveStrategyScored
}

// MergeDecision records why a record was folded into an entity
type MergeDecision struct {
	RecordIndex int                `json:"record_index"`
	Filename    string             `json:"filename"`
	EntityIndex int                `json:"entity_index"`
	Rule        string             `json:"rule,omitempty"`
	Score       float64            `json:"score,omitempty"`
	Signals     map[string]float64 `json:"signals,omitempty"`
}

// MergeConflict describes two different non-empty values for a singular field.
// The first value seen is kept.
type MergeConflict struct {
	EntityIndex   int    `json:"entity_index"`
	Field         string `json:"field"`
	ResolvedValue string `json:"resolved_value"`
	Discarded     string `json:"discarded"`
	Filename      string `json:"filename"`
}

// MergeOutcome is the full output of one strategy run
type MergeOutcome struct {
	Entities  []ConsolidatedEntity `json:"entities"`
	Decisions []MergeDecision      `json:"decisions"`
	Conflicts []MergeConflict      `json:"conflicts,omitempty"`
}

// Resolution is a resolved batch as stored and returned by the API
type Resolution struct {
	ID         string               `json:"id" db:"id"`
	TenantID   string               `json:"tenant_id" db:"tenant_id"`
	Strategy   ResolveStrategy      `json:"strategy" db:"strategy"`
	BatchKey   string               `json:"batch_key" db:"batch_key"`
	InputCount int                  `json:"input_count" db:"input_count"`
	Entities   []ConsolidatedEntity `json:"entities" db:"-"`
	Decisions  []MergeDecision      `json:"decisions" db:"-"`
	Conflicts  []MergeConflict      `json:"conflicts,omitempty" db:"-"`
	Cached     bool                 `json:"cached" db:"-"`
	CreatedAt  time.Time            `json:"created_at" db:"created_at"`
}
