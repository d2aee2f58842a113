package models

// ConsolidatedEntity is a contact record produced by folding one or more
// RawExtractions together.
type ConsolidatedEntity struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Company   string   `json:"company"`
	JobTitle  string   `json:"job_title"`
	Emails    []string `json:"emails"`
	Phones    []string `json:"phones"`
	Websites  []string `json:"websites"`
	Address   string   `json:"address"`
	Text      string   `json:"text"`
	Logos     []string `json:"logos"`
	Filenames []string `json:"filenames"`
}

// SourceCount returns the number of images folded into the entity
func (e *ConsolidatedEntity) SourceCount() int {
	return len(e.Filenames)
}

// Record returns the entity viewed as a single extraction, used for matching
// the running entity against later records.
func (e *ConsolidatedEntity) Record() RawExtraction {
	return RawExtraction{
		FullName: e.FullName,
		Company:  e.Company,
		JobTitle: e.JobTitle,
		Emails:   e.Emails,
		Phones:   e.Phones,
		Websites: e.Websites,
		Address:  e.Address,
		Text:     e.Text,
		Logos:    e.Logos,
	}
}
