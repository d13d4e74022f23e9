// Package provider holds the HTTP clients for the external botanical
// databases. Clients translate local filters into each provider's wire
// vocabulary and decode the provider's own response shape. They return
// explicit errors; deciding what a failure means is left to the caller.
package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotFound     = errors.New("provider: not found")
	ErrUnauthorized = errors.New("provider: unauthorized")
	ErrUnavailable  = errors.New("provider: unavailable")
)

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

// checkResponse maps transport errors and non-2xx statuses onto the
// package sentinels.
func checkResponse(name, op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", name, op, ErrUnavailable, err)
	}
	switch code := resp.StatusCode(); {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", name, op, ErrNotFound)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w (status %d)", name, op, ErrUnauthorized, code)
	default:
		return fmt.Errorf("%s %s: %w: status %d: %s", name, op, ErrUnavailable, code, truncate(resp.String(), 200))
	}
}

func decode(name, op string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s %s: decode: %w", name, op, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
