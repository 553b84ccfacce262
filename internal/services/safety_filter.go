package services

import "strings"

// DisclaimerSentence is appended to every persisted report that does
// not already contain it.
const DisclaimerSentence = "Observational insights only. This is not a diagnostic assessment."

// DisclaimerShort is attached to read-path responses.
const DisclaimerShort = "Observational insights only. Not a diagnostic tool. Consult professionals for concerns."

// forbiddenTerms is the versioned vocabulary of diagnostic, clinical,
// and deficit language that must never reach a user. The adjective
// "diagnostic" itself is deliberately absent so the mandatory
// disclaimer sentence always passes the filter. Order is fixed so
// violation reporting is deterministic.
var forbiddenTerms = []string{
	"diagnosis", "diagnose", "diagnosed",
	"disorder", "disability", "disabled",
	"adhd", "autism", "dyslexia", "dysgraphia",
	"learning disability", "special needs",
	"deficit", "deficient", "deficiency",
	"impaired", "impairment",
	"abnormal", "atypical",
	"treatment", "therapy", "intervention",
	"clinical", "medical", "psychiatric",
	"symptom", "syndrome",
}

// safeReplacements rewrites deficit-framed phrasing into supportive
// language. It never removes forbidden terms; those block output.
var safeReplacements = [][2]string{
	{"struggles with", "shows developing skills in"},
	{"has difficulty", "is building capacity for"},
	{"cannot", "is learning to"},
	{"fails to", "is working toward"},
	{"poor performance", "emerging abilities"},
	{"weakness", "growth opportunity"},
}

// CheckSafety scans text for forbidden vocabulary, case-insensitive
// substring containment. It reports every match, in vocabulary order,
// not just the first.
func CheckSafety(text string) (bool, []string) {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range forbiddenTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return len(found) == 0, found
}

// SanitizeText applies the supportive-language replacements.
func SanitizeText(text string) string {
	result := text
	for _, pair := range safeReplacements {
		result = strings.ReplaceAll(result, pair[0], pair[1])
		result = strings.ReplaceAll(result, capitalize(pair[0]), capitalize(pair[1]))
	}
	return result
}

// EnsureDisclaimer appends the mandatory disclaimer sentence when the
// text does not already contain it.
func EnsureDisclaimer(text string) string {
	if strings.Contains(text, DisclaimerSentence) {
		return text
	}
	trimmed := strings.TrimRight(text, " \n\t")
	if trimmed == "" {
		return DisclaimerSentence
	}
	return trimmed + "\n\n" + DisclaimerSentence
}

// ForbiddenTermCount reports the size of the active vocabulary, used
// by the guardrails health endpoint.
func ForbiddenTermCount() int {
	return len(forbiddenTerms)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
