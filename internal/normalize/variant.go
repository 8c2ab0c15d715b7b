package normalize

import (
	"regexp"
	"strings"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Variant confidence is fixed per match quality, never derived from data.
const (
	variantConfidenceMatched = 0.9
	variantConfidenceLegacy  = 0.7
	variantConfidenceUnknown = 0.3
)

// subsequenceKeywords mark a message as a follow-up when any appears in the
// body (case-insensitive substring).
var subsequenceKeywords = []string{
	"following up",
	"checking back",
	"circling back",
	"wanted to bump",
	"in case you missed",
	"quick reminder",
}

// subsequenceFragments map a follow-up subject fragment to its template name.
// Checked in order; first match wins.
var subsequenceFragments = []struct {
	name     string
	fragment string
}{
	{"Followup-Results", "results"},
	{"Followup-Checkin", "checking in"},
	{"Followup-Thoughts", "thoughts"},
	{"Followup-Bump", "re:"},
}

// mainSequencePatterns are the main-sequence subject templates, in fixed
// list order. First match wins.
var mainSequencePatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Main-GrowthPlan", regexp.MustCompile(`(?i)grow(ing)? your (spotify|streams|audience)`)},
	{"Main-PlaylistPitch", regexp.MustCompile(`(?i)playlist (placement|pitch|push)`)},
	{"Main-FreeAudit", regexp.MustCompile(`(?i)free (spotify )?audit`)},
	{"Main-ArtistIntro", regexp.MustCompile(`(?i)(loved|found) your (music|track|release)`)},
}

// legacyPattern matches the old-method subject line that predates templated
// sequences.
var legacyPattern = regexp.MustCompile(`(?i)(your music career|marketing for .+ artists)`)

// ClassifyVariant tags an email touchpoint with its message template family.
// Two stages: the body decides main sequence vs follow-up, then the subject
// picks the template. The Unknown tag is informational only and never blocks
// attribution.
func ClassifyVariant(subject, content string) model.Variant {
	lowerBody := strings.ToLower(content)
	lowerSubject := strings.ToLower(subject)

	for _, kw := range subsequenceKeywords {
		if strings.Contains(lowerBody, kw) {
			for _, f := range subsequenceFragments {
				if strings.Contains(lowerSubject, f.fragment) {
					return model.Variant{Name: f.name, Sequence: "subsequence", Confidence: variantConfidenceMatched}
				}
			}
			return model.Variant{Name: "Followup-Unknown", Sequence: "subsequence", Confidence: variantConfidenceUnknown}
		}
	}

	for _, p := range mainSequencePatterns {
		if p.pattern.MatchString(subject) {
			return model.Variant{Name: p.name, Sequence: "main", Confidence: variantConfidenceMatched}
		}
	}

	if legacyPattern.MatchString(subject) {
		return model.Variant{Name: "Legacy", Sequence: "old_method", Confidence: variantConfidenceLegacy}
	}

	return model.Variant{Name: "Unknown", Sequence: "main", Confidence: variantConfidenceUnknown}
}
