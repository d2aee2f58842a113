// Package merging folds card extractions into consolidated contact entities
package merging

import (
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Engine merges records with the boolean identity rules
type Engine struct {
	fieldMerger *FieldMerger
}

// NewEngine creates a new rule-based merge engine
func NewEngine() *Engine {
	return &Engine{fieldMerger: NewFieldMerger()}
}

// MergeAll folds records into entities in arrival order.
//
// Behavior:
//   - each record is compared with the existing entities in insertion order
//   - the first entity that is the same person or the other face of the card
//     absorbs the record, and scanning stops
//   - a record that matches nothing starts a new entity
//
// Matching runs against the running entity, so an entity grows the identifiers
// of every record folded into it.
func (e *Engine) MergeAll(records []models.RawExtraction) models.MergeOutcome {
	outcome := models.MergeOutcome{
		Entities:  make([]models.ConsolidatedEntity, 0, len(records)),
		Decisions: []models.MergeDecision{},
	}
	// parallel to outcome.Entities
	fingerprints := make([]fingerprint.Fingerprint, 0, len(records))

	for i, record := range records {
		fp := fingerprint.New(record)

		matched := -1
		var rule matching.Rule
		for idx := range outcome.Entities {
			if r, ok := matching.Match(fingerprints[idx], fp); ok {
				matched, rule = idx, r
				break
			}
		}

		if matched < 0 {
			outcome.Entities = append(outcome.Entities, e.fieldMerger.NewEntity(record))
			fingerprints = append(fingerprints, fp)
			continue
		}

		entity := &outcome.Entities[matched]
		conflicts := e.fieldMerger.Merge(entity, matched, record)
		outcome.Conflicts = append(outcome.Conflicts, conflicts...)
		fingerprints[matched] = fingerprint.New(entity.Record())

		outcome.Decisions = append(outcome.Decisions, models.MergeDecision{
			RecordIndex: i,
			Filename:    record.Filename,
			EntityIndex: matched,
			Rule:        string(rule),
		})
	}

	return outcome
}

// MergeAll folds records into entities with the default rule-based engine
func MergeAll(records []models.RawExtraction) []models.ConsolidatedEntity {
	return NewEngine().MergeAll(records).Entities
}
