package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neuroplay/neuroplay-backend/internal/logger"
)

// PolicyCorpus is the static governance material embedded into the
// validator's review prompt: constraints and examples, never
// intelligence.
type PolicyCorpus struct {
	ForbiddenTerms  []string `yaml:"forbidden_terms"`
	AllowedPhrasing []string `yaml:"allowed_phrasing"`
	StructureRules  []string `yaml:"structure_rules"`
	ExampleReports  []string `yaml:"example_reports"`
}

// DefaultPolicyCorpus returns the compiled-in corpus, used when no
// POLICY_CORPUS_PATH override is configured.
func DefaultPolicyCorpus() *PolicyCorpus {
	return &PolicyCorpus{
		ForbiddenTerms: append([]string(nil), forbiddenTerms...),
		AllowedPhrasing: []string{
			"shows developing skills in",
			"is building capacity for",
			"is learning to",
			"is working toward",
			"natural fluctuations in attention",
			"steady focus and participation",
			"growing ease with the task demands",
		},
		StructureRules: []string{
			"Write a single cohesive narrative, not a bullet list of findings.",
			"Use calm, supportive, observational language only.",
			"Never include numbers, scores, percentages, or timing values.",
			"Never name the game or describe raw gameplay events.",
			"End with the sentence: " + DisclaimerSentence,
		},
		ExampleReports: []string{
			"The learner engaged steadily with the activities and showed a consistent response rhythm. " +
				"Continuing with the current mix of activities should support this engagement. " +
				DisclaimerSentence,
			"The learner showed varying response speeds across activities, which is a common observation " +
				"during learning tasks. Shorter activity bursts with brief breaks may help maintain engagement. " +
				DisclaimerSentence,
		},
	}
}

// LoadPolicyCorpus reads a YAML corpus from path. Empty sections fall
// back to the compiled-in defaults so a partial file cannot weaken the
// review prompt.
func LoadPolicyCorpus(path string, log *logger.Logger) (*PolicyCorpus, error) {
	defaults := DefaultPolicyCorpus()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy corpus %s: %w", path, err)
	}
	var corpus PolicyCorpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse policy corpus %s: %w", path, err)
	}

	if len(corpus.ForbiddenTerms) == 0 {
		corpus.ForbiddenTerms = defaults.ForbiddenTerms
	}
	if len(corpus.AllowedPhrasing) == 0 {
		corpus.AllowedPhrasing = defaults.AllowedPhrasing
	}
	if len(corpus.StructureRules) == 0 {
		corpus.StructureRules = defaults.StructureRules
	}
	if len(corpus.ExampleReports) == 0 {
		corpus.ExampleReports = defaults.ExampleReports
	}
	log.Info("Loaded policy corpus", "path", path, "forbidden_terms", len(corpus.ForbiddenTerms))
	return &corpus, nil
}

// ReviewPrompt renders the full review prompt for a candidate report.
func (pc *PolicyCorpus) ReviewPrompt(reportContent string) string {
	var b strings.Builder
	b.WriteString("=== POLICY: FORBIDDEN TERMS ===\n")
	b.WriteString(strings.Join(pc.ForbiddenTerms, ", "))
	b.WriteString("\n\n=== POLICY: ALLOWED PHRASING ===\n")
	b.WriteString(strings.Join(pc.AllowedPhrasing, "\n"))
	b.WriteString("\n\n=== POLICY: STRUCTURE RULES ===\n")
	b.WriteString(strings.Join(pc.StructureRules, "\n"))
	b.WriteString("\n\n=== POLICY: EXAMPLE SAFE REPORTS ===\n")
	b.WriteString(strings.Join(pc.ExampleReports, "\n---\n"))
	b.WriteString("\n\n=== REPORT TO VALIDATE ===\n")
	b.WriteString(reportContent)
	b.WriteString("\n\nReview the report above against the constraints and examples.\n")
	b.WriteString("Return STATUS: APPROVED, STATUS: REWRITTEN, or STATUS: REJECTED.\n")
	b.WriteString("If REWRITTEN, provide the corrected report text.\n")
	b.WriteString("If REJECTED, provide a brief reason.")
	return b.String()
}
