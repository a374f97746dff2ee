package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"meeting-insights-backend/internal/client"
	"meeting-insights-backend/internal/config"
	"meeting-insights-backend/internal/meeting"
	"meeting-insights-backend/internal/types"
)

type Server struct {
	router    *chi.Mux
	cfg       config.Config
	log       *logrus.Logger
	validate  *validator.Validate
	prompts   *meeting.PromptStore
	processor *meeting.Processor
	insights  *client.InsightsClient
	qna       *client.QnAClient
}

// NewServer builds the model backend, prompt catalogue and clients from cfg.
func NewServer(cfg config.Config, log *logrus.Logger) (*Server, error) {
	ps, err := meeting.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	prompts := meeting.NewPromptStore(ps)

	var llm meeting.Completer
	if cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "" {
		oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			oc.BaseURL = cfg.OpenAIBaseURL
		}
		llm = openai.NewClientWithConfig(oc)
	} else if cfg.ServiceEnabled {
		log.Warn("no model backend configured; /api/insights and /api/qna will answer 500")
	}
	proc := meeting.NewProcessor(llm, cfg.Model, prompts, cfg.MaxConcurrent, log)

	ic := client.NewInsightsClient(client.Options{
		Endpoint: cfg.InsightsEndpointURL,
		Timeout:  cfg.InsightsTimeout,
		Token:    cfg.EndpointToken,
		Logger:   log,
	})
	qc := client.NewQnAClient(client.Options{
		Endpoint: cfg.QnAEndpointURL,
		Timeout:  cfg.QnATimeout,
		Token:    cfg.EndpointToken,
		Logger:   log,
	})
	return New(cfg, log, prompts, proc, ic, qc), nil
}

// New wires a server from parts that are already built.
func New(cfg config.Config, log *logrus.Logger, prompts *meeting.PromptStore, proc *meeting.Processor, ic *client.InsightsClient, qc *client.QnAClient) *Server {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	r := chi.NewRouter()
	s := &Server{
		router:    r,
		cfg:       cfg,
		log:       log,
		validate:  v,
		prompts:   prompts,
		processor: proc,
		insights:  ic,
		qna:       qc,
	}

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	if s.cfg.ServiceEnabled {
		s.router.Post("/api/insights", s.handleInsights)
		s.router.Post("/api/qna", s.handleQnA)
	}
	if s.cfg.UIEnabled {
		s.router.Get("/", s.handleIndex)
		s.router.Get("/ui/example", s.handleExample)
		s.router.Post("/ui/insights", s.handleUIInsights)
		s.router.Post("/ui/ask", s.handleUIAsk)
	}
}

func (s *Server) Router() http.Handler { return s.router }

// Prompts is the live catalogue, for the prompt file watcher.
func (s *Server) Prompts() *meeting.PromptStore { return s.prompts }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if s.cfg.ServiceEnabled {
		status["model_ready"] = s.processor.Ready()
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}
