package meeting

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/default.yaml
var defaultPrompts []byte

type Prompt struct {
	System      string  `yaml:"system"`
	Template    string  `yaml:"template"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

type PromptSet struct {
	Insights struct {
		Summary   Prompt `yaml:"summary"`
		Decisions Prompt `yaml:"decisions"`
		Actions   Prompt `yaml:"actions"`
		Sentiment Prompt `yaml:"sentiment"`
	} `yaml:"insights"`
	QnA Prompt `yaml:"qna"`
}

// LoadPrompts reads a catalogue from path, or the embedded default when path
// is empty.
func LoadPrompts(path string) (*PromptSet, error) {
	if path == "" {
		return ParsePrompts(defaultPrompts)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return ParsePrompts(b)
}

func ParsePrompts(b []byte) (*PromptSet, error) {
	var ps PromptSet
	if err := yaml.Unmarshal(b, &ps); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	checks := []struct {
		name string
		p    *Prompt
		vars []string
	}{
		{"insights.summary", &ps.Insights.Summary, []string{"{transcript}"}},
		{"insights.decisions", &ps.Insights.Decisions, []string{"{transcript}"}},
		{"insights.actions", &ps.Insights.Actions, []string{"{transcript}"}},
		{"insights.sentiment", &ps.Insights.Sentiment, []string{"{transcript}"}},
		{"qna", &ps.QnA, []string{"{transcript}", "{question}"}},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.p.Template) == "" {
			return nil, fmt.Errorf("prompt %s: template is required", c.name)
		}
		for _, v := range c.vars {
			if !strings.Contains(c.p.Template, v) {
				return nil, fmt.Errorf("prompt %s: template must contain %s", c.name, v)
			}
		}
		if c.p.MaxTokens <= 0 {
			c.p.MaxTokens = 300
		}
		if c.p.Temperature <= 0 {
			c.p.Temperature = 0.6
		}
	}
	return &ps, nil
}

// Render substitutes the placeholders in one pass, so placeholder text inside
// the transcript is left alone.
func (p Prompt) Render(transcript, question string) string {
	return strings.NewReplacer("{transcript}", transcript, "{question}", question).Replace(p.Template)
}

// PromptStore holds the active catalogue; readers never see a half-loaded set.
type PromptStore struct {
	mu  sync.RWMutex
	set *PromptSet
}

func NewPromptStore(ps *PromptSet) *PromptStore {
	return &PromptStore{set: ps}
}

func (s *PromptStore) Get() *PromptSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

func (s *PromptStore) Set(ps *PromptSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = ps
}
