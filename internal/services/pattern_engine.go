package services

const (
	PatternVariableFocus  = "Variable focus rhythm"
	PatternTargetTracking = "Building target tracking"
	PatternSteadyFocus    = "Steady focus"

	ConfidenceLow      = "low"
	ConfidenceModerate = "moderate"
	ConfidenceHigh     = "high"
)

// PatternOutcome is the observational classification of one session.
// All fields are qualitative language; no numeric metric ever appears
// here.
type PatternOutcome struct {
	PatternName    string
	Confidence     string
	LearningImpact string
	SupportFocus   string
	Explanation    string
}

// InferPattern maps a feature summary to exactly one pattern outcome.
// Rule order is a fixed policy: variability is checked before miss
// rate, so a session exhibiting both is always reported as a focus
// rhythm observation. The default rule is always reachable.
func InferPattern(features *FeatureSummary) *PatternOutcome {
	confidence := ConfidenceLow
	if features.TotalEvents >= 10 {
		confidence = ConfidenceModerate
	}

	if features.HighVariability() {
		return &PatternOutcome{
			PatternName: PatternVariableFocus,
			Confidence:  confidence,
			LearningImpact: "Learner shows varying response speeds, which may reflect " +
				"natural fluctuations in attention during tasks.",
			SupportFocus: "Consider shorter activity bursts with brief breaks. " +
				"Consistent routines may help maintain engagement.",
			Explanation: "Response timing varied across the activity, which is a common observation " +
				"during learning tasks. This pattern is typical for many learners.",
		}
	}

	if features.HighMissRate() {
		return &PatternOutcome{
			PatternName: PatternTargetTracking,
			Confidence:  confidence,
			LearningImpact: "Learner is developing skills in tracking and responding " +
				"to visual targets.",
			SupportFocus: "Practice with slower-paced activities may build confidence. " +
				"Celebrate successful responses.",
			Explanation: "Response accuracy varied during the activity, which suggests the learner " +
				"is developing visual tracking skills. This is expected during skill building.",
		}
	}

	return &PatternOutcome{
		PatternName: PatternSteadyFocus,
		Confidence:  ConfidenceModerate,
		LearningImpact: "Learner demonstrated consistent response patterns during " +
			"the activity.",
		SupportFocus: "Continue with current activities. The learner shows " +
			"age-appropriate engagement.",
		Explanation: "Responses were consistent throughout the activity, with successful engagement " +
			"observed across the task. This indicates steady focus and participation.",
	}
}
