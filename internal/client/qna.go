package client

import (
	"context"
	"strings"

	"meeting-insights-backend/internal/types"
)

const MissingAnswer = "Answer not provided."

// AnswerResult is either an answer (Err == nil) or a classified Error.
type AnswerResult struct {
	Answer string
	Err    *Error
}

func (r AnswerResult) OK() bool { return r.Err == nil }

// Text is the string shown in the answer slot, success or not.
func (r AnswerResult) Text() string {
	if r.Err != nil {
		return r.Err.Message
	}
	return r.Answer
}

func (r AnswerResult) Display() types.DisplayAnswer {
	out := types.DisplayAnswer{Answer: r.Text(), OK: r.OK()}
	if r.Err != nil {
		out.Kind = string(r.Err.Kind)
	}
	return out
}

type qnaBody struct {
	Answer *string `json:"answer"`
	Error  *string `json:"error"`
}

type QnAClient struct {
	c *caller
}

func NewQnAClient(opts Options) *QnAClient {
	return &QnAClient{c: newCaller("Q&A", opts, DefaultQnATimeout)}
}

// Ask checks endpoint, transcript and question in that order, then makes a
// single call.
func (qc *QnAClient) Ask(ctx context.Context, transcript, question string) (res AnswerResult) {
	defer recoverInto(qc.c.log, &res.Err)

	if err := qc.c.checkConfig(); err != nil {
		return AnswerResult{Err: err}
	}
	if strings.TrimSpace(transcript) == "" {
		return AnswerResult{Err: validationError(MsgQnABlankTranscript)}
	}
	if strings.TrimSpace(question) == "" {
		return AnswerResult{Err: validationError(MsgBlankQuestion)}
	}

	var body qnaBody
	req := types.QnARequest{Transcript: transcript, Question: question}
	if err := qc.c.postJSON(ctx, req, &body); err != nil {
		return AnswerResult{Err: err}
	}
	if body.Error != nil && *body.Error != "" {
		qc.c.log.Errorf("AI service reported an error: %s", *body.Error)
		return AnswerResult{Err: serviceError(*body.Error)}
	}
	return AnswerResult{Answer: orDefault(body.Answer, MissingAnswer)}
}
