package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Kind classifies why a call did not produce a usable result.
type Kind string

const (
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindTimeout    Kind = "timeout"
	KindTransport  Kind = "transport"
	KindHTTPStatus Kind = "http_status"
	KindFormat     Kind = "format"
	KindService    Kind = "service"
	KindInternal   Kind = "internal"
)

// Messages shown to the user. Tests assert on these, keep them stable.
const (
	MsgTimeout            = "Request to AI service timed out. Please try again."
	MsgBlankTranscript    = "Please enter some transcript text first."
	MsgQnABlankTranscript = "Please provide a meeting transcript first."
	MsgBlankQuestion      = "Please enter a question about the transcript."
	ServiceErrorPrefix    = "AI Service Error: "
)

// Error is the failure variant of a client result.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func configError(name string, err error) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: fmt.Sprintf("%s endpoint URL not correctly configured: %v.", name, err),
		Err:     err,
	}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func serviceError(reported string) *Error {
	return &Error{Kind: KindService, Message: ServiceErrorPrefix + reported}
}

func internalError(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("Critical unexpected error: %v", err),
		Err:     err,
	}
}

func formatError(err error) *Error {
	return &Error{
		Kind:    KindFormat,
		Message: fmt.Sprintf("Network/JSON error: %v. Check URL & service status.", err),
		Err:     err,
	}
}

// transportError separates deadline expiry from every other failure to get a
// response (DNS, refused connection, TLS, reset).
func transportError(err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	}
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf("Network/JSON error: %v. Check URL & service status.", err),
		Err:     err,
	}
}

// statusError builds the message for a non-2xx answer. The body is only
// inspected for an {"error": "..."} detail; anything else is ignored.
func statusError(resp *http.Response, body []byte) *Error {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	status := strings.TrimSpace(fmt.Sprintf("%d %s", resp.StatusCode, reason))

	var detail struct {
		Error string `json:"error"`
	}
	msg := fmt.Sprintf("HTTP error: %s. Check service logs.", status)
	if json.Unmarshal(body, &detail) == nil && strings.TrimSpace(detail.Error) != "" {
		msg = fmt.Sprintf("HTTP error: %s (%s). Check service logs.", status, strings.TrimSpace(detail.Error))
	}
	return &Error{
		Kind:       KindHTTPStatus,
		Message:    msg,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("unexpected status %s", status),
	}
}
