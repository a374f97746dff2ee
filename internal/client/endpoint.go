package client

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEndpointMissing     = errors.New("endpoint URL is not set")
	ErrEndpointPlaceholder = errors.New("endpoint URL is still a placeholder")
	ErrEndpointInsecure    = errors.New("endpoint URL must start with https://")
	ErrEndpointMalformed   = errors.New("endpoint URL is malformed")
)

// Values shipped in sample configs that must never be dialed.
var placeholderEndpoints = []string{
	"YOUR_ENDPOINT_URL_HERE",
	"YOUR_INSIGHTS_ENDPOINT_URL_HERE",
	"YOUR_QNA_ENDPOINT_URL_HERE",
	"YOUR_NEW_MODAL_ENDPOINT_URL_HERE_FOR_V6_5",
	"https://your-endpoint.example.com",
}

// CheckEndpoint reports whether raw is usable as a service endpoint: set,
// not a placeholder, https and with a host.
func CheckEndpoint(raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ErrEndpointMissing
	}
	for _, p := range placeholderEndpoints {
		if strings.EqualFold(v, p) {
			return ErrEndpointPlaceholder
		}
	}
	if !strings.HasPrefix(v, "https://") {
		return ErrEndpointInsecure
	}
	u, err := url.Parse(v)
	if err != nil || u.Host == "" {
		return ErrEndpointMalformed
	}
	return nil
}
