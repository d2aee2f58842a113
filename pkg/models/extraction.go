package models

// RawExtraction is the field set produced for a single card image by the
// OCR/LLM collaborator. It is never mutated once produced.
type RawExtraction struct {
	FullName string   `json:"full_name"`
	Company  string   `json:"company"`
	JobTitle string   `json:"job_title"`
	Emails   []string `json:"emails"`
	Phones   []string `json:"phones"`
	Websites []string `json:"websites"`
	Address  string   `json:"address"`
	Text     string   `json:"text"`
	Logos    []string `json:"logos"`
	Filename string   `json:"filename"`
}

// IsEmpty reports whether the record carries no usable data at all.
func (r RawExtraction) IsEmpty() bool {
	return r.FullName == "" && r.Company == "" && r.JobTitle == "" && r.Address == "" && r.Text == "" &&
		len(r.Emails) == 0 && len(r.Phones) == 0 && len(r.Websites) == 0 && len(r.Logos) == 0
}

// ExtractionBatch is a batch of records submitted for resolution
type ExtractionBatch struct {
	TenantID string          `json:"tenant_id"`
	BatchID  string          `json:"batch_id"`
	Records  []RawExtraction `json:"records"`
}
