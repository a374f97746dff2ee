package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"meeting-insights-backend/internal/client"
)

type Config struct {
	Port          string `validate:"required,numeric"`
	AllowedOrigin string `validate:"required"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	LogFormat     string `validate:"oneof=json text"`
	// Optional TLS; both or neither
	TLSCertFile string `validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `validate:"required_with=TLSCertFile"`

	// Browser UI and the clients it drives
	UIEnabled           bool
	InsightsEndpointURL string
	QnAEndpointURL      string
	InsightsTimeout     time.Duration `validate:"gt=0"`
	QnATimeout          time.Duration `validate:"gt=0"`
	// Bearer token for gateways in front of the hosted endpoints
	EndpointToken string

	// Insight/Q&A service backed by an OpenAI-compatible API
	ServiceEnabled         bool
	OpenAIAPIKey           string
	OpenAIBaseURL          string `validate:"omitempty,url"`
	Model                  string `validate:"required"`
	PromptsFile            string
	MaxConcurrent          int           `validate:"gte=1"`
	InsightsServiceTimeout time.Duration `validate:"gt=0"`
	QnAServiceTimeout      time.Duration `validate:"gt=0"`
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:                   getEnvDefault("PORT", "8080"),
		AllowedOrigin:          getEnvDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:               strings.ToLower(getEnvDefault("LOG_LEVEL", "info")),
		LogFormat:              strings.ToLower(getEnvDefault("LOG_FORMAT", "json")),
		TLSCertFile:            os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:             os.Getenv("TLS_KEY_FILE"),
		UIEnabled:              getEnvBoolDefault("UI_ENABLED", true),
		InsightsEndpointURL:    strings.TrimSpace(os.Getenv("INSIGHTS_ENDPOINT_URL")),
		QnAEndpointURL:         strings.TrimSpace(os.Getenv("QNA_ENDPOINT_URL")),
		InsightsTimeout:        getEnvDurationDefault("INSIGHTS_TIMEOUT", client.DefaultInsightsTimeout),
		QnATimeout:             getEnvDurationDefault("QNA_TIMEOUT", client.DefaultQnATimeout),
		EndpointToken:          os.Getenv("ENDPOINT_TOKEN"),
		ServiceEnabled:         getEnvBoolDefault("SERVICE_ENABLED", true),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          os.Getenv("OPENAI_BASE_URL"),
		Model:                  getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		PromptsFile:            os.Getenv("PROMPTS_FILE"),
		MaxConcurrent:          getEnvIntDefault("MAX_CONCURRENT_GENERATIONS", 1),
		InsightsServiceTimeout: getEnvDurationDefault("INSIGHTS_SERVICE_TIMEOUT", 600*time.Second),
		QnAServiceTimeout:      getEnvDurationDefault("QNA_SERVICE_TIMEOUT", 180*time.Second),
	}
	if cfg.ServiceEnabled && cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
		log.Println("warning: OPENAI_API_KEY is not set; insight requests will fail until provided")
	}
	return cfg
}

var validate = validator.New()

// Validate fails fast on settings that would only surface on the first
// request, most importantly the endpoints the UI calls.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.UIEnabled && !c.ServiceEnabled {
		return fmt.Errorf("invalid config: UI_ENABLED and SERVICE_ENABLED are both off")
	}
	if c.UIEnabled {
		if err := client.CheckEndpoint(c.InsightsEndpointURL); err != nil {
			return fmt.Errorf("INSIGHTS_ENDPOINT_URL: %w", err)
		}
		if err := client.CheckEndpoint(c.QnAEndpointURL); err != nil {
			return fmt.Errorf("QNA_ENDPOINT_URL: %w", err)
		}
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("warning: %s=%q is not an integer, using %d", key, v, def)
	}
	return def
}

// getEnvDurationDefault accepts Go durations ("90s", "5m") or bare seconds.
func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("warning: %s=%q is not a duration, using %s", key, v, def)
	return def
}
