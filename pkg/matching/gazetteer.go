package matching

import (
	"regexp"
	"sort"
	"strings"
)

// addressKeywords is the fixed gazetteer of place names and address terms
// whose presence on both cards counts as weak evidence of a shared address.
var addressKeywords = []string{
	// cities
	"mumbai", "navi mumbai", "thane", "delhi", "new delhi", "noida", "gurgaon", "gurugram",
	"faridabad", "ghaziabad", "bangalore", "bengaluru", "chennai", "kolkata", "hyderabad",
	"secunderabad", "pune", "ahmedabad", "surat", "vadodara", "jaipur", "lucknow", "kanpur",
	"chandigarh", "mohali", "indore", "bhopal", "nagpur", "kochi", "coimbatore", "mysore",
	"visakhapatnam", "patna", "goa", "dubai", "singapore", "london", "new york",
	// address terms
	"road", "sector", "street", "marg", "nagar", "lane", "avenue", "floor", "building",
	"tower", "plaza", "complex", "phase", "block", "estate", "industrial", "park", "suite",
	"highway", "cross", "main", "colony", "chowk", "market",
}

var (
	roleRegex          = regexp.MustCompile(`\b(director|founder|co-founder|cofounder|ceo|cto|cfo|coo|chairman|president|partner|proprietor|owner|manager|head|vice president|vp|executive|consultant|officer)\b`)
	companySuffixRegex = regexp.MustCompile(`\b(pvt|private|ltd|limited|inc|incorporated|llp|llc|corp|corporation|gmbh|plc|enterprises|industries)\b`)
	nonWordRegex       = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// addressKeywordTokens is the gazetteer split into words, longest entries
// first, so that "navi mumbai" is claimed before "mumbai" can match inside it.
var addressKeywordTokens = func() [][]string {
	tokens := make([][]string, 0, len(addressKeywords))
	for _, kw := range addressKeywords {
		tokens = append(tokens, strings.Fields(kw))
	}
	sort.SliceStable(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	return tokens
}()

// addressKeywordsIn returns the gazetteer keywords present in s. Each word of
// s counts toward at most one keyword.
func addressKeywordsIn(s string) map[string]bool {
	found := make(map[string]bool)
	ws := words(s)
	for _, kw := range addressKeywordTokens {
		for i := 0; i+len(kw) <= len(ws); i++ {
			if !matchesAt(ws, i, kw) {
				continue
			}
			found[strings.Join(kw, " ")] = true
			for k := i; k < i+len(kw); k++ {
				ws[k] = ""
			}
		}
	}
	return found
}

func matchesAt(ws []string, i int, kw []string) bool {
	for k, w := range kw {
		if ws[i+k] != w {
			return false
		}
	}
	return true
}

// words lower-cases s and splits it on anything that is not a letter or digit
func words(s string) []string {
	return strings.Fields(nonWordRegex.ReplaceAllString(strings.ToLower(s), " "))
}

// longWords returns the distinct words of s longer than minLen runes, and how
// many such words s holds counting repeats
func longWords(s string, minLen int) (map[string]bool, int) {
	distinct := make(map[string]bool)
	count := 0
	for _, w := range words(s) {
		if len([]rune(w)) > minLen {
			distinct[w] = true
			count++
		}
	}
	return distinct, count
}
