package merging

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// TextSeparator joins the OCR text of merged cards
const TextSeparator = "\n---\n"

// Field names reported in merge conflicts
const (
	FieldFullName = "full_name"
	FieldCompany  = "company"
	FieldJobTitle = "job_title"
	FieldAddress  = "address"
)

// FieldMerger handles field-level merge logic
type FieldMerger struct{}

// NewFieldMerger creates a new FieldMerger
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// NewEntity starts a consolidated entity from a single record
func (m *FieldMerger) NewEntity(record models.RawExtraction) models.ConsolidatedEntity {
	entity := models.ConsolidatedEntity{
		FullName:  strings.TrimSpace(record.FullName),
		Company:   strings.TrimSpace(record.Company),
		JobTitle:  strings.TrimSpace(record.JobTitle),
		Address:   strings.TrimSpace(record.Address),
		Text:      strings.TrimSpace(record.Text),
		Emails:    m.collectAll(nil, record.Emails, normalizers.NormalizeEmail),
		Phones:    m.collectAll(nil, record.Phones, normalizers.NormalizePhone),
		Websites:  m.collectAll(nil, record.Websites, normalizers.NormalizeWebsite),
		Logos:     m.collectAll(nil, record.Logos, normalizers.NormalizeName),
		// one slot per source record, even when the filename is unknown
		Filenames: []string{record.Filename},
	}
	return entity
}

// Merge folds record into entity in place and returns any singular-field
// disagreements. The entity keeps the first non-empty value of each singular
// field; array fields are unioned in first-seen order.
func (m *FieldMerger) Merge(entity *models.ConsolidatedEntity, entityIndex int, record models.RawExtraction) []models.MergeConflict {
	var conflicts []models.MergeConflict
	singular := []struct {
		field     string
		target    *string
		value     string
		normalize normalizers.Normalizer
	}{
		{FieldFullName, &entity.FullName, record.FullName, normalizers.NormalizeName},
		{FieldCompany, &entity.Company, record.Company, normalizers.NormalizeCompany},
		{FieldJobTitle, &entity.JobTitle, record.JobTitle, normalizers.NormalizeName},
		{FieldAddress, &entity.Address, record.Address, normalizers.NormalizeName},
	}
	for _, s := range singular {
		discarded, conflict := m.preferNonEmpty(s.target, s.value, s.normalize)
		if !conflict {
			continue
		}
		conflicts = append(conflicts, models.MergeConflict{
			EntityIndex:   entityIndex,
			Field:         s.field,
			ResolvedValue: *s.target,
			Discarded:     discarded,
			Filename:      record.Filename,
		})
	}

	entity.Emails = m.collectAll(entity.Emails, record.Emails, normalizers.NormalizeEmail)
	entity.Phones = m.collectAll(entity.Phones, record.Phones, normalizers.NormalizePhone)
	entity.Websites = m.collectAll(entity.Websites, record.Websites, normalizers.NormalizeWebsite)
	entity.Logos = m.collectAll(entity.Logos, record.Logos, normalizers.NormalizeName)
	entity.Text = m.joinText(entity.Text, record.Text)

	entity.Filenames = append(entity.Filenames, record.Filename)

	return conflicts
}

// preferNonEmpty fills target when it is empty. When both sides are non-empty
// and differ after normalization, the incoming value is discarded and reported.
func (m *FieldMerger) preferNonEmpty(target *string, value string, normalize normalizers.Normalizer) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if *target == "" {
		*target = value
		return "", false
	}
	if normalize(*target) == normalize(value) {
		return "", false
	}
	return value, true
}

// collectAll appends the values of incoming not already present in existing.
// Values are compared by their normalized form, the first raw spelling is kept,
// and values that normalize to nothing are dropped.
func (m *FieldMerger) collectAll(existing, incoming []string, normalize normalizers.Normalizer) []string {
	result := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))

	for _, values := range [][]string{existing, incoming} {
		for _, v := range values {
			key := normalize(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, strings.TrimSpace(v))
		}
	}

	return result
}

func (m *FieldMerger) joinText(existing, incoming string) string {
	incoming = strings.TrimSpace(incoming)
	switch {
	case incoming == "":
		return existing
	case existing == "":
		return incoming
	case existing == incoming:
		return existing
	}
	return existing + TextSeparator + incoming
}
