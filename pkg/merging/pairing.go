package merging

import (
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Pairer merges each record with its single best-scoring partner
type Pairer struct {
	scorer      *matching.Scorer
	fieldMerger *FieldMerger
}

// NewPairer creates a new Pairer. A nil scorer uses the default weights.
func NewPairer(scorer *matching.Scorer) *Pairer {
	if scorer == nil {
		scorer = matching.NewScorer(matching.DefaultScoringConfig())
	}
	return &Pairer{scorer: scorer, fieldMerger: NewFieldMerger()}
}

// PairCards walks the records in index order. For each unused record i it
// picks the unused j > i with the highest score (ties keep the lower index)
// and merges the two when the scorer's gate allows it; otherwise i is emitted
// on its own. Pairs are never revisited once fixed.
func (p *Pairer) PairCards(records []models.RawExtraction) models.MergeOutcome {
	outcome := models.MergeOutcome{
		Entities:  make([]models.ConsolidatedEntity, 0, len(records)),
		Decisions: []models.MergeDecision{},
	}

	features := make([]matching.Features, len(records))
	for i, record := range records {
		features[i] = p.scorer.Features(record)
	}
	used := make([]bool, len(records))

	for i := range records {
		if used[i] {
			continue
		}
		used[i] = true

		best := -1
		var bestScore matching.PairScore
		for j := i + 1; j < len(records); j++ {
			if used[j] {
				continue
			}
			score := p.scorer.ScoreFeatures(features[i], features[j])
			if best < 0 || score.Total > bestScore.Total {
				best, bestScore = j, score
			}
		}

		entityIndex := len(outcome.Entities)
		entity := p.fieldMerger.NewEntity(records[i])

		if best >= 0 && p.scorer.ShouldMerge(bestScore) {
			used[best] = true
			conflicts := p.fieldMerger.Merge(&entity, entityIndex, records[best])
			outcome.Conflicts = append(outcome.Conflicts, conflicts...)
			outcome.Decisions = append(outcome.Decisions, models.MergeDecision{
				RecordIndex: best,
				Filename:    records[best].Filename,
				EntityIndex: entityIndex,
				Score:       bestScore.Total,
				Signals:     bestScore.Signals,
			})
		}

		outcome.Entities = append(outcome.Entities, entity)
	}

	return outcome
}

// PairCards pairs records with the default scoring weights
func PairCards(records []models.RawExtraction) []models.ConsolidatedEntity {
	return NewPairer(nil).PairCards(records).Entities
}
