package domain

// RubricCategory names one of the five fixed evaluation dimensions.
type RubricCategory string

const (
	RubricTechnicalAccuracy RubricCategory = "technicalAccuracy"
	RubricConversationFlow  RubricCategory = "conversationFlow"
	RubricCustomerSentiment RubricCategory = "customerSentiment"
	RubricResponseQuality   RubricCategory = "responseQuality"
	RubricKBUtilization     RubricCategory = "kbUtilization"
)

// RubricAnalysis holds one free-text assessment per rubric category.
type RubricAnalysis struct {
	TechnicalAccuracy string `json:"technicalAccuracy"`
	ConversationFlow  string `json:"conversationFlow"`
	CustomerSentiment string `json:"customerSentiment"`
	ResponseQuality   string `json:"responseQuality"`
	KBUtilization     string `json:"kbUtilization"`
}

// EvaluationResult is the structured verdict of one evaluator call. It is
// persisted verbatim into Ticket.LastHandoffReason when a handoff occurs.
type EvaluationResult struct {
	NeedsHandoff    bool           `json:"needsHandoff"`
	Reason          string         `json:"reason,omitempty"`
	AnalysisFailure RubricCategory `json:"analysisFailure,omitempty"`
	Confidence      float64        `json:"confidence"`
	KBGaps          []string       `json:"kbGaps,omitempty"`
	Analysis        RubricAnalysis `json:"analysis"`
}
