// Package fingerprint derives the normalized, comparable view of a card
// extraction used for identity matching.
package fingerprint

import (
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// Fingerprint is a normalized projection of a RawExtraction. It is only used
// for matching and is never persisted.
type Fingerprint struct {
	Name     string   `json:"name"`
	Company  string   `json:"company"`
	JobTitle string   `json:"job_title"`
	Emails   []string `json:"emails"`
	Phones   []string `json:"phones"`
	Websites []string `json:"websites"`
	Text     string   `json:"text"`
}

// New builds the fingerprint of a record. It never fails: missing fields
// become empty values.
func New(record models.RawExtraction) Fingerprint {
	return Fingerprint{
		Name:     normalizers.NormalizeName(record.FullName),
		Company:  normalizers.NormalizeCompany(record.Company),
		JobTitle: normalizers.NormalizeName(record.JobTitle),
		Emails:   normalizers.ApplyAll(record.Emails, normalizers.NormalizeEmail),
		Phones:   normalizers.ApplyAll(record.Phones, normalizers.NormalizePhone),
		Websites: normalizers.ApplyAll(record.Websites, normalizers.NormalizeWebsite),
		Text:     normalizers.Lowercase(record.Text),
	}
}

// NewAll fingerprints every record of a batch, preserving order
func NewAll(records []models.RawExtraction) []Fingerprint {
	result := make([]Fingerprint, len(records))
	for i, r := range records {
		result[i] = New(r)
	}
	return result
}

// HasPerson reports whether the fingerprint identifies a person (name, email or phone)
func (f Fingerprint) HasPerson() bool {
	return f.Name != "" || len(f.Emails) > 0 || len(f.Phones) > 0
}

// HasCompany reports whether the fingerprint names a company
func (f Fingerprint) HasCompany() bool {
	return f.Company != ""
}
