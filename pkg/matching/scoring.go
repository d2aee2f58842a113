package matching

import (
	"math"
	"strings"

	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// Signal names used in PairScore.Signals
const (
	SignalEmail       = "email"
	SignalPhone       = "phone"
	SignalWebsite     = "website"
	SignalLogo        = "logo"
	SignalAddress     = "address"
	SignalRoleCompany = "role_company"
	SignalTextOverlap = "text_overlap"
)

// ScoringConfig holds the signal weights and merge gates of the pairing scorer
type ScoringConfig struct {
	EmailWeight        float64
	PhoneWeight        float64
	WebsiteWeight      float64
	LogoWeight         float64
	AddressPerKeyword  float64
	AddressMax         float64
	RoleCompanyWeight  float64
	TextOverlapMax     float64
	TextMinWordLen     int // words must be longer than this to count
	TextMinSharedWords int

	// A pair merges when it has strong evidence, or scores at least
	// MergeThreshold, or scores at least LogoMergeThreshold with a logo match.
	MergeThreshold     float64
	LogoMergeThreshold float64
}

// DefaultScoringConfig returns the default pairing weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		EmailWeight:        1.0,
		PhoneWeight:        1.0,
		WebsiteWeight:      0.8,
		LogoWeight:         0.5,
		AddressPerKeyword:  0.1,
		AddressMax:         0.3,
		RoleCompanyWeight:  0.4,
		TextOverlapMax:     0.3,
		TextMinWordLen:     3,
		TextMinSharedWords: 2,
		MergeThreshold:     1.2,
		LogoMergeThreshold: 0.7,
	}
}

// scoreEpsilon absorbs float rounding when comparing accumulated scores to thresholds
const scoreEpsilon = 1e-9

// PairScore is the additive score between two records
type PairScore struct {
	Total   float64
	Signals map[string]float64
	// Strong is set when the pair shares an exact email, phone or website
	Strong bool
}

// Has reports whether a signal contributed to the score
func (p PairScore) Has(signal string) bool {
	_, ok := p.Signals[signal]
	return ok
}

// Features is the precomputed, comparable view of a record used by the scorer
type Features struct {
	Fingerprint      fingerprint.Fingerprint
	Logos            []string
	AddressKeywords  map[string]bool
	HasRole          bool
	HasCompanySuffix bool
	LongWords        map[string]bool
	LongWordCount    int
}

// Scorer computes continuous match scores between card records
type Scorer struct {
	config ScoringConfig
}

// NewScorer creates a new Scorer
func NewScorer(config ScoringConfig) *Scorer {
	return &Scorer{config: config}
}

// Features extracts the scoring features of a record
func (s *Scorer) Features(record models.RawExtraction) Features {
	doc := document(record)
	address := record.Address
	if strings.TrimSpace(address) == "" {
		address = record.Text
	}

	long, longCount := longWords(doc, s.config.TextMinWordLen)

	return Features{
		Fingerprint:      fingerprint.New(record),
		Logos:            normalizers.ApplyAll(record.Logos, normalizers.NormalizeName),
		AddressKeywords:  addressKeywordsIn(address),
		HasRole:          roleRegex.MatchString(doc),
		HasCompanySuffix: companySuffixRegex.MatchString(doc),
		LongWords:        long,
		LongWordCount:    longCount,
	}
}

// Score scores two records
func (s *Scorer) Score(a, b models.RawExtraction) PairScore {
	return s.ScoreFeatures(s.Features(a), s.Features(b))
}

// ScoreFeatures scores two precomputed feature sets
func (s *Scorer) ScoreFeatures(a, b Features) PairScore {
	score := PairScore{Signals: make(map[string]float64)}
	add := func(signal string, weight float64) {
		if weight <= 0 {
			return
		}
		score.Signals[signal] = weight
		score.Total += weight
	}

	if SharesAny(a.Fingerprint.Emails, b.Fingerprint.Emails) {
		add(SignalEmail, s.config.EmailWeight)
		score.Strong = true
	}
	if SharesAny(a.Fingerprint.Phones, b.Fingerprint.Phones) {
		add(SignalPhone, s.config.PhoneWeight)
		score.Strong = true
	}
	if SharesAny(a.Fingerprint.Websites, b.Fingerprint.Websites) {
		add(SignalWebsite, s.config.WebsiteWeight)
		score.Strong = true
	}
	if SharesAny(a.Logos, b.Logos) {
		add(SignalLogo, s.config.LogoWeight)
	}

	add(SignalAddress, s.addressScore(a.AddressKeywords, b.AddressKeywords))

	if (a.HasRole && b.HasCompanySuffix) || (b.HasRole && a.HasCompanySuffix) {
		add(SignalRoleCompany, s.config.RoleCompanyWeight)
	}

	add(SignalTextOverlap, s.textOverlapScore(a, b))

	return score
}

// ShouldMerge applies the merge gate to a pair score
func (s *Scorer) ShouldMerge(score PairScore) bool {
	if score.Strong {
		return true
	}
	if score.Total+scoreEpsilon >= s.config.MergeThreshold {
		return true
	}
	return score.Has(SignalLogo) && score.Total+scoreEpsilon >= s.config.LogoMergeThreshold
}

func (s *Scorer) addressScore(a, b map[string]bool) float64 {
	shared := 0
	for kw := range a {
		if b[kw] {
			shared++
		}
	}
	return math.Min(float64(shared)*s.config.AddressPerKeyword, s.config.AddressMax)
}

// textOverlapScore is the number of distinct long words both texts share over
// the long-word count of the wordier text, repeats included
func (s *Scorer) textOverlapScore(a, b Features) float64 {
	shared := 0
	for w := range a.LongWords {
		if b.LongWords[w] {
			shared++
		}
	}
	if shared < s.config.TextMinSharedWords {
		return 0
	}
	denom := max(a.LongWordCount, b.LongWordCount)
	return s.config.TextOverlapMax * float64(shared) / float64(denom)
}

// document is the lower-cased text the textual signals run over. The OCR text
// is used when present, otherwise the parsed fields stand in for it.
func document(record models.RawExtraction) string {
	if strings.TrimSpace(record.Text) != "" {
		return strings.ToLower(record.Text)
	}
	parts := []string{record.FullName, record.JobTitle, record.Company, record.Address}
	return strings.ToLower(strings.Join(parts, " "))
}
