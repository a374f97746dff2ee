package client

import (
	"context"
	"strings"

	"meeting-insights-backend/internal/types"
)

// Placeholders for fields the service left out of an otherwise valid answer.
const (
	MissingSummary   = "Summary not provided."
	MissingDecisions = "Decisions not provided."
	MissingActions   = "Action items not provided."
	MissingSentiment = "Sentiment not provided."
)

// Placeholders for the three secondary slots when the call failed.
const (
	FailedDecisions = "Error: Could not retrieve decisions."
	FailedActions   = "Error: Could not retrieve action items."
	FailedSentiment = "Error: Could not retrieve sentiment."
)

type Insights struct {
	Summary   string
	Decisions string
	Actions   string
	Sentiment string
}

// InsightsResult is either Insights (Err == nil) or a classified Error.
type InsightsResult struct {
	Insights Insights
	Err      *Error
}

func (r InsightsResult) OK() bool { return r.Err == nil }

// Fields renders the result onto the four display slots. Failures put their
// message in the summary slot.
func (r InsightsResult) Fields() (summary, decisions, actions, sentiment string) {
	if r.Err == nil {
		return r.Insights.Summary, r.Insights.Decisions, r.Insights.Actions, r.Insights.Sentiment
	}
	switch r.Err.Kind {
	case KindService, KindValidation:
		return r.Err.Message, "", "", ""
	default:
		return r.Err.Message, FailedDecisions, FailedActions, FailedSentiment
	}
}

func (r InsightsResult) Display() types.DisplayInsights {
	s, d, a, se := r.Fields()
	out := types.DisplayInsights{Summary: s, Decisions: d, Actions: a, Sentiment: se, OK: r.OK()}
	if r.Err != nil {
		out.Kind = string(r.Err.Kind)
	}
	return out
}

// insightsBody mirrors types.InsightsResponse with pointers so absent fields
// can be told apart from empty ones.
type insightsBody struct {
	Summary   *string `json:"summary"`
	Decisions *string `json:"decisions"`
	Actions   *string `json:"actions"`
	Sentiment *string `json:"sentiment"`
	Error     *string `json:"error"`
}

type InsightsClient struct {
	c *caller
}

func NewInsightsClient(opts Options) *InsightsClient {
	return &InsightsClient{c: newCaller("Insights", opts, DefaultInsightsTimeout)}
}

// Analyze sends transcript to the insights endpoint. It never panics and
// never returns a nil-shaped result.
func (ic *InsightsClient) Analyze(ctx context.Context, transcript string) (res InsightsResult) {
	defer recoverInto(ic.c.log, &res.Err)

	if err := ic.c.checkConfig(); err != nil {
		return InsightsResult{Err: err}
	}
	if strings.TrimSpace(transcript) == "" {
		return InsightsResult{Err: validationError(MsgBlankTranscript)}
	}

	var body insightsBody
	if err := ic.c.postJSON(ctx, types.InsightsRequest{Transcript: transcript}, &body); err != nil {
		return InsightsResult{Err: err}
	}
	if body.Error != nil && *body.Error != "" {
		ic.c.log.Errorf("AI service reported an error: %s", *body.Error)
		return InsightsResult{Err: serviceError(*body.Error)}
	}
	ic.c.log.Info("parsed insights")
	return InsightsResult{Insights: Insights{
		Summary:   orDefault(body.Summary, MissingSummary),
		Decisions: orDefault(body.Decisions, MissingDecisions),
		Actions:   orDefault(body.Actions, MissingActions),
		Sentiment: orDefault(body.Sentiment, MissingSentiment),
	}}
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
