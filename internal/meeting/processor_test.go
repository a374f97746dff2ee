package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeCompleter answers with reply(req), recording every request.
type fakeCompleter struct {
	mu    sync.Mutex
	reqs  []openai.ChatCompletionRequest
	reply func(req openai.ChatCompletionRequest) (string, error)
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	text, err := f.reply(req)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}},
	}}, nil
}

func userContent(req openai.ChatCompletionRequest) string {
	return req.Messages[len(req.Messages)-1].Content
}

func newTestProcessor(t *testing.T, llm Completer) *Processor {
	t.Helper()
	ps, err := LoadPrompts("")
	if err != nil {
		t.Fatal(err)
	}
	return NewProcessor(llm, "test-model", NewPromptStore(ps), 1, quietLogger())
}

func TestInsightsRunsFourTasksInOrder(t *testing.T) {
	fc := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		u := userContent(req)
		switch {
		case strings.Contains(u, "concise summary"):
			return " The team synced on Alpha. ", nil
		case strings.Contains(u, "key decisions"):
			return "- Prioritize core endpoints", nil
		case strings.Contains(u, "action items"):
			return "- Diana: send budget (Assigned to: Diana)", nil
		default:
			return "Positive\nProductive meeting.", nil
		}
	}}
	p := newTestProcessor(t, fc)

	out, err := p.Insights(context.Background(), "Alice: kick off")
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if out.Summary != "The team synced on Alpha." {
		t.Errorf("Summary = %q", out.Summary)
	}
	if out.Decisions != "- Prioritize core endpoints" || out.Actions == "" || !strings.HasPrefix(out.Sentiment, "Positive") {
		t.Errorf("out = %+v", out)
	}
	if out.Error != "" {
		t.Errorf("Error = %q", out.Error)
	}
	if len(fc.reqs) != 4 {
		t.Fatalf("requests = %d, want 4", len(fc.reqs))
	}
	wantTokens := []int{350, 250, 300, 100}
	for i, req := range fc.reqs {
		if req.MaxTokens != wantTokens[i] {
			t.Errorf("request %d MaxTokens = %d, want %d", i, req.MaxTokens, wantTokens[i])
		}
		if req.Model != "test-model" {
			t.Errorf("request %d Model = %q", i, req.Model)
		}
		if !strings.Contains(userContent(req), "Alice: kick off") {
			t.Errorf("request %d does not carry the transcript", i)
		}
	}
}

func TestInsightsPartialFailure(t *testing.T) {
	fc := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		u := userContent(req)
		if strings.Contains(u, "key decisions") {
			return "", errors.New("rate limited")
		}
		if strings.Contains(u, "overall sentiment") {
			return "  ", nil
		}
		return "ok", nil
	}}
	p := newTestProcessor(t, fc)

	out, err := p.Insights(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if out.Summary != "ok" || out.Actions != "ok" {
		t.Errorf("successful tasks lost: %+v", out)
	}
	if out.Decisions != "Error generating decisions." || out.Sentiment != "Error analyzing sentiment." {
		t.Errorf("fallbacks = %q / %q", out.Decisions, out.Sentiment)
	}
	want := "Decisions: rate limited; Sentiment: empty completion"
	if out.Error != want {
		t.Errorf("Error = %q, want %q", out.Error, want)
	}
}

func TestProcessorNotConfigured(t *testing.T) {
	p := newTestProcessor(t, nil)
	if p.Ready() {
		t.Fatal("Ready() = true without a backend")
	}
	if _, err := p.Insights(context.Background(), "t"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Insights() error = %v", err)
	}
	if _, err := p.Answer(context.Background(), "t", "q"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Answer() error = %v", err)
	}
}

func TestAnswer(t *testing.T) {
	fc := &fakeCompleter{reply: func(req openai.ChatCompletionRequest) (string, error) {
		if !strings.Contains(userContent(req), "User's Question: Who sends the budget?") {
			return "", fmt.Errorf("question missing from prompt")
		}
		return "Diana sends the budget proposal.", nil
	}}
	out, err := newTestProcessor(t, fc).Answer(context.Background(), "Diana: budget by EOD", "Who sends the budget?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if out.Answer != "Diana sends the budget proposal." || out.Error != "" {
		t.Errorf("out = %+v", out)
	}
	if fc.reqs[0].MaxTokens != 200 || fc.reqs[0].Temperature != 0.4 {
		t.Errorf("request = %+v", fc.reqs[0])
	}
	if fc.reqs[0].Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %q", fc.reqs[0].Messages[0].Role)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	fc := &fakeCompleter{reply: func(openai.ChatCompletionRequest) (string, error) {
		return "", errors.New("boom")
	}}
	out, err := newTestProcessor(t, fc).Answer(context.Background(), "t", "q")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if out.Answer != "Error: Could not generate answer from AI." || out.Error != "Error generating answer: boom" {
		t.Errorf("out = %+v", out)
	}
}

func TestProcessorWithOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "generated"},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	p := newTestProcessor(t, openai.NewClientWithConfig(cfg))

	out, err := p.Insights(context.Background(), "Bob: endpoints by Wednesday")
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if out.Summary != "generated" || out.Sentiment != "generated" || out.Error != "" {
		t.Errorf("out = %+v", out)
	}
}

func TestSemaphoreHonorsContext(t *testing.T) {
	s := newSemaphore(1)
	if err := s.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire() = %v, want context.Canceled", err)
	}
	s.release()
	if err := s.acquire(context.Background()); err != nil {
		t.Errorf("acquire() after release = %v", err)
	}
}
