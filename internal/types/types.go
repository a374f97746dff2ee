package types

type InsightsRequest struct {
	Transcript string `json:"transcript" validate:"notblank"`
}

// InsightsResponse is the body of a 200 from the insights endpoint. Error is
// non-empty when one or more insights could not be generated.
type InsightsResponse struct {
	Summary   string `json:"summary"`
	Decisions string `json:"decisions"`
	Actions   string `json:"actions"`
	Sentiment string `json:"sentiment"`
	Error     string `json:"error"`
}

type QnARequest struct {
	Transcript string `json:"transcript" validate:"notblank"`
	Question   string `json:"question" validate:"notblank"`
}

type QnAResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// DisplayInsights is what the browser UI renders into its four tabs.
type DisplayInsights struct {
	Summary   string `json:"summary"`
	Decisions string `json:"decisions"`
	Actions   string `json:"actions"`
	Sentiment string `json:"sentiment"`
	OK        bool   `json:"ok"`
	Kind      string `json:"kind,omitempty"`
}

type DisplayAnswer struct {
	Answer string `json:"answer"`
	OK     bool   `json:"ok"`
	Kind   string `json:"kind,omitempty"`
}
