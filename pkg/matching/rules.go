// Package matching implements the card identity rules and the pairwise
// scoring used to decide which extractions describe the same card or person.
package matching

import (
	"strings"

	"github.com/hashicorp/go-set/v2"

	"github.com/Ramsey-B/fern/pkg/fingerprint"
)

// Rule names the identity rule that linked two fingerprints
type Rule string

const (
	RuleNone Rule = ""

	// Same person: hard identifiers first
	RuleSharedEmail    Rule = "same_person.email"
	RuleSharedPhone    Rule = "same_person.phone"
	RuleSharedWebsite  Rule = "same_person.website"
	RuleNameAndCompany Rule = "same_person.name_company"

	// Front/back of one physical card
	RuleSameCompany      Rule = "front_back.company"
	RuleComplement       Rule = "front_back.complement"
	RuleCompanySubstring Rule = "front_back.company_substring"
)

// minCompanySubstringLen is the length a contained company name must exceed
// before a substring match counts ("acme" vs "acmeprivatelimited").
const minCompanySubstringLen = 3

// IsSamePerson reports whether two fingerprints share a strong identity signal
func IsSamePerson(a, b fingerprint.Fingerprint) bool {
	_, ok := SamePersonRule(a, b)
	return ok
}

// SamePersonRule returns the first same-person rule satisfied by a and b.
// Rules short-circuit in order: email, phone, website, then name+company.
func SamePersonRule(a, b fingerprint.Fingerprint) (Rule, bool) {
	switch {
	case SharesAny(a.Emails, b.Emails):
		return RuleSharedEmail, true
	case SharesAny(a.Phones, b.Phones):
		return RuleSharedPhone, true
	case SharesAny(a.Websites, b.Websites):
		return RuleSharedWebsite, true
	case a.Name != "" && a.Name == b.Name && a.Company != "" && a.Company == b.Company:
		return RuleNameAndCompany, true
	}
	return RuleNone, false
}

// IsFrontBackPair reports whether two fingerprints look like the two faces of
// one physical card, typically a company-only back and a person-only front.
func IsFrontBackPair(a, b fingerprint.Fingerprint) bool {
	_, ok := FrontBackRule(a, b)
	return ok
}

// FrontBackRule returns the first front/back rule satisfied by a and b
func FrontBackRule(a, b fingerprint.Fingerprint) (Rule, bool) {
	bothCompanies := a.HasCompany() && b.HasCompany()

	if bothCompanies && a.Company == b.Company {
		return RuleSameCompany, true
	}

	if isCompanyOnly(a) && isPersonOnly(b) || isCompanyOnly(b) && isPersonOnly(a) {
		return RuleComplement, true
	}

	if bothCompanies && companyContains(a.Company, b.Company) {
		return RuleCompanySubstring, true
	}

	return RuleNone, false
}

// Match evaluates the same-person rules, then the front/back rules
func Match(a, b fingerprint.Fingerprint) (Rule, bool) {
	if rule, ok := SamePersonRule(a, b); ok {
		return rule, true
	}
	return FrontBackRule(a, b)
}

// SharesAny reports whether any value of a also appears in b
func SharesAny(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	values := set.From(b)
	for _, v := range a {
		if values.Contains(v) {
			return true
		}
	}
	return false
}

func isCompanyOnly(f fingerprint.Fingerprint) bool {
	return !f.HasPerson() && f.HasCompany()
}

func isPersonOnly(f fingerprint.Fingerprint) bool {
	return f.HasPerson() && !f.HasCompany()
}

func companyContains(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	return len(shorter) > minCompanySubstringLen && strings.Contains(longer, shorter)
}
