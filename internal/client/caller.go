package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultInsightsTimeout = 300 * time.Second
	DefaultQnATimeout      = 180 * time.Second
)

// Options configures one client. Endpoint is checked with CheckEndpoint when
// the client is built; a bad value makes every call fail with KindConfig.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	// Token, when set, is sent as a bearer token on every call.
	Token      string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// caller holds what both clients share: the endpoint, its check result and
// one POST-and-decode round trip.
type caller struct {
	name        string
	endpoint    string
	endpointErr error
	timeout     time.Duration
	httpClient  *http.Client
	log         *logrus.Entry
}

func newCaller(name string, opts Options, defaultTimeout time.Duration) *caller {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if opts.Token != "" {
		base := context.WithValue(context.Background(), oauth2.HTTPClient, hc)
		hc = oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &caller{
		name:        name,
		endpoint:    strings.TrimSpace(opts.Endpoint),
		endpointErr: CheckEndpoint(opts.Endpoint),
		timeout:     timeout,
		httpClient:  hc,
		log:         logger.WithField("client", name),
	}
}

// checkConfig must run before any network I/O.
func (c *caller) checkConfig() *Error {
	if c.endpointErr != nil {
		c.log.WithField("endpoint", c.endpoint).Errorf("endpoint misconfigured: %v", c.endpointErr)
		return configError(c.name, c.endpointErr)
	}
	return nil
}

// postJSON sends payload and decodes a 2xx JSON object body into out.
// A literal null body is a format error.
func (c *caller) postJSON(ctx context.Context, payload, out any) *Error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b, err := json.Marshal(payload)
	if err != nil {
		return internalError(fmt.Errorf("encode request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return internalError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.WithField("endpoint", c.endpoint).Info("sending request to AI service")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cerr := transportError(err)
		c.log.WithField("kind", cerr.Kind).Errorf("request failed: %v", err)
		return cerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		cerr := transportError(fmt.Errorf("read response: %w", err))
		c.log.WithField("kind", cerr.Kind).Errorf("reading response failed: %v", err)
		return cerr
	}
	c.log.WithFields(logrus.Fields{
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("response from AI service")
	c.log.Debugf("raw response: %s", body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cerr := statusError(resp, body)
		c.log.WithField("kind", cerr.Kind).Error(cerr.Message)
		return cerr
	}
	if string(bytes.TrimSpace(body)) == "null" {
		return formatError(errors.New("JSON parsed to null"))
	}
	if err := json.Unmarshal(body, out); err != nil {
		cerr := formatError(err)
		c.log.WithField("kind", cerr.Kind).Error(cerr.Message)
		return cerr
	}
	return nil
}

// recoverInto converts a panic during a call into an internal error.
func recoverInto(log *logrus.Entry, dst **Error) {
	if r := recover(); r != nil {
		log.Errorf("panic during call: %v", r)
		*dst = internalError(fmt.Errorf("%v", r))
	}
}
