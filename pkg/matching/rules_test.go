package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/models"
)

func fp(r models.RawExtraction) fingerprint.Fingerprint {
	return fingerprint.New(r)
}

func TestSamePersonRule(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.RawExtraction
		expected Rule
		match    bool
	}{
		{
			name:     "shared email only",
			a:        models.RawExtraction{FullName: "Jane", Emails: []string{"J@X.com"}},
			b:        models.RawExtraction{FullName: "Someone Else", Emails: []string{"j@x.com"}},
			expected: RuleSharedEmail,
			match:    true,
		},
		{
			name:     "phone with and without country code",
			a:        models.RawExtraction{Phones: []string{"+91 98765 43210"}},
			b:        models.RawExtraction{Phones: []string{"9876543210"}},
			expected: RuleSharedPhone,
			match:    true,
		},
		{
			name:     "shared website",
			a:        models.RawExtraction{Websites: []string{"www.acme.com"}},
			b:        models.RawExtraction{Websites: []string{" WWW.ACME.COM"}},
			expected: RuleSharedWebsite,
			match:    true,
		},
		{
			name:     "same name and company",
			a:        models.RawExtraction{FullName: "Jane Doe", Company: "Acme, Inc."},
			b:        models.RawExtraction{FullName: "jane doe ", Company: "ACME INC"},
			expected: RuleNameAndCompany,
			match:    true,
		},
		{
			name:  "same name without company",
			a:     models.RawExtraction{FullName: "Jane Doe"},
			b:     models.RawExtraction{FullName: "Jane Doe"},
			match: false,
		},
		{
			name:  "empty records",
			a:     models.RawExtraction{},
			b:     models.RawExtraction{},
			match: false,
		},
		{
			name:     "email wins over phone",
			a:        models.RawExtraction{Emails: []string{"a@b.com"}, Phones: []string{"1234567890"}},
			b:        models.RawExtraction{Emails: []string{"a@b.com"}, Phones: []string{"1234567890"}},
			expected: RuleSharedEmail,
			match:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := SamePersonRule(fp(tt.a), fp(tt.b))
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.expected, rule)
			assert.Equal(t, tt.match, IsSamePerson(fp(tt.a), fp(tt.b)))
		})
	}
}

func TestFrontBackRule(t *testing.T) {
	tests := []struct {
		name     string
		a, b     models.RawExtraction
		expected Rule
		match    bool
	}{
		{
			name:     "same company",
			a:        models.RawExtraction{FullName: "Jane", Company: "Acme Pvt Ltd"},
			b:        models.RawExtraction{FullName: "John", Company: "ACME PVT. LTD."},
			expected: RuleSameCompany,
			match:    true,
		},
		{
			name:     "company-only back and person-only front",
			a:        models.RawExtraction{Company: "Acme Pvt Ltd"},
			b:        models.RawExtraction{FullName: "Jane Doe"},
			expected: RuleComplement,
			match:    true,
		},
		{
			name:     "person-only front and company-only back",
			a:        models.RawExtraction{Phones: []string{"98765 43210"}},
			b:        models.RawExtraction{Company: "Acme"},
			expected: RuleComplement,
			match:    true,
		},
		{
			name:     "company substring",
			a:        models.RawExtraction{FullName: "Jane", Company: "Acme"},
			b:        models.RawExtraction{FullName: "Jane", Company: "Acme Private Limited"},
			expected: RuleCompanySubstring,
			match:    true,
		},
		{
			name:  "short company substring ignored",
			a:     models.RawExtraction{FullName: "Jane", Company: "AB"},
			b:     models.RawExtraction{FullName: "John", Company: "ABC Holdings"},
			match: false,
		},
		{
			name:  "two people different companies",
			a:     models.RawExtraction{FullName: "Jane", Company: "Acme"},
			b:     models.RawExtraction{FullName: "John", Company: "Globex"},
			match: false,
		},
		{
			name:  "both company-only different companies",
			a:     models.RawExtraction{Company: "Acme"},
			b:     models.RawExtraction{Company: "Globex"},
			match: false,
		},
		{
			name:  "both person-only",
			a:     models.RawExtraction{FullName: "Jane"},
			b:     models.RawExtraction{FullName: "John"},
			match: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := FrontBackRule(fp(tt.a), fp(tt.b))
			assert.Equal(t, tt.match, ok)
			assert.Equal(t, tt.expected, rule)
		})
	}
}

func TestRulesAreSymmetric(t *testing.T) {
	records := []models.RawExtraction{
		{},
		{FullName: "Jane Doe"},
		{Company: "Acme Pvt Ltd"},
		{Company: "Acme"},
		{FullName: "Jane Doe", Company: "Acme"},
		{FullName: "John Roe", Company: "Acme Private Limited"},
		{Emails: []string{"j@x.com"}},
		{Emails: []string{"J@X.COM"}, Company: "Globex"},
		{Phones: []string{"+91 98765 43210"}},
		{Phones: []string{"9876543210"}, Company: "Initech"},
		{Websites: []string{"acme.com"}},
		{Company: "AB"},
		{Company: "ABC"},
	}

	for i := range records {
		for j := range records {
			a, b := fp(records[i]), fp(records[j])
			assert.Equal(t, IsSamePerson(a, b), IsSamePerson(b, a), "IsSamePerson(%d,%d)", i, j)
			assert.Equal(t, IsFrontBackPair(a, b), IsFrontBackPair(b, a), "IsFrontBackPair(%d,%d)", i, j)
		}
	}
}

func TestMatch(t *testing.T) {
	rule, ok := Match(
		fp(models.RawExtraction{Company: "Acme", Emails: []string{"a@acme.com"}}),
		fp(models.RawExtraction{Company: "Acme", Emails: []string{"a@acme.com"}}),
	)
	assert.True(t, ok)
	assert.Equal(t, RuleSharedEmail, rule)

	rule, ok = Match(
		fp(models.RawExtraction{Company: "Acme Pvt Ltd"}),
		fp(models.RawExtraction{FullName: "Jane Doe"}),
	)
	assert.True(t, ok)
	assert.Equal(t, RuleComplement, rule)

	_, ok = Match(
		fp(models.RawExtraction{FullName: "Jane Doe"}),
		fp(models.RawExtraction{FullName: "John Roe"}),
	)
	assert.False(t, ok)
}

func TestSharesAny(t *testing.T) {
	assert.True(t, SharesAny([]string{"a", "b"}, []string{"c", "b"}))
	assert.False(t, SharesAny([]string{"a"}, []string{"b"}))
	assert.False(t, SharesAny(nil, []string{"b"}))
	assert.False(t, SharesAny([]string{"a"}, nil))
}
