package meeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"meeting-insights-backend/internal/types"
)

var ErrNotConfigured = errors.New("AI model backend is not configured")

// Completer is the slice of the OpenAI client the processor needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Processor turns transcripts into insights and answers. Calls are plain
// blocking calls; concurrent generations are capped by a semaphore.
type Processor struct {
	llm     Completer
	model   string
	prompts *PromptStore
	sem     *semaphore
	log     *logrus.Entry
}

// NewProcessor accepts a nil llm; every call then fails with ErrNotConfigured.
func NewProcessor(llm Completer, model string, prompts *PromptStore, maxConcurrent int, log *logrus.Logger) *Processor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Processor{
		llm:     llm,
		model:   model,
		prompts: prompts,
		sem:     newSemaphore(maxConcurrent),
		log:     log.WithField("component", "processor"),
	}
}

func (p *Processor) Ready() bool { return p.llm != nil }

type insightTask struct {
	name     string
	prompt   Prompt
	dst      *string
	fallback string
}

// Insights runs the four extractions in order. A failed extraction leaves a
// fixed text in its field and is listed in the response's Error; the others
// still run.
func (p *Processor) Insights(ctx context.Context, transcript string) (types.InsightsResponse, error) {
	var out types.InsightsResponse
	if !p.Ready() {
		return out, ErrNotConfigured
	}
	ps := p.prompts.Get()
	tasks := []insightTask{
		{"Summary", ps.Insights.Summary, &out.Summary, "Error generating summary."},
		{"Decisions", ps.Insights.Decisions, &out.Decisions, "Error generating decisions."},
		{"Actions", ps.Insights.Actions, &out.Actions, "Error generating actions."},
		{"Sentiment", ps.Insights.Sentiment, &out.Sentiment, "Error analyzing sentiment."},
	}
	p.log.WithField("transcript_chars", len(transcript)).Info("processing transcript insights")

	var errs []string
	for _, t := range tasks {
		text, err := p.generate(ctx, t.prompt, transcript, "")
		if err != nil {
			p.log.WithField("task", t.name).Errorf("generation failed: %v", err)
			*t.dst = t.fallback
			errs = append(errs, fmt.Sprintf("%s: %v", t.name, err))
			continue
		}
		*t.dst = text
	}
	out.Error = strings.Join(errs, "; ")
	p.log.WithField("failed_tasks", len(errs)).Info("insights complete")
	return out, nil
}

// Answer answers question using only the transcript.
func (p *Processor) Answer(ctx context.Context, transcript, question string) (types.QnAResponse, error) {
	if !p.Ready() {
		return types.QnAResponse{}, ErrNotConfigured
	}
	p.log.WithField("question", question).Info("answering question")
	answer, err := p.generate(ctx, p.prompts.Get().QnA, transcript, question)
	if err != nil {
		p.log.Errorf("answer generation failed: %v", err)
		return types.QnAResponse{
			Answer: "Error: Could not generate answer from AI.",
			Error:  fmt.Sprintf("Error generating answer: %v", err),
		}, nil
	}
	return types.QnAResponse{Answer: answer}, nil
}

func (p *Processor) generate(ctx context.Context, prompt Prompt, transcript, question string) (string, error) {
	if err := p.sem.acquire(ctx); err != nil {
		return "", fmt.Errorf("waiting for model slot: %w", err)
	}
	defer p.sem.release()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if s := strings.TrimSpace(prompt.System); s != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.Render(transcript, question),
	})

	resp, err := p.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: prompt.Temperature,
		TopP:        0.9,
		MaxTokens:   prompt.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion")
	}
	return text, nil
}
