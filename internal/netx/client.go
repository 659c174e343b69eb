// Package netx wraps outbound HTTP calls to the backend with a hard per-call
// deadline and classifies every result, so timeout and fallback policy is
// defined in one place instead of at each call site. The backend is assumed
// flaky and partially deployed; no call may block past its budget.
package netx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/coffyapp/coffy-client/internal/logging"
	"github.com/google/uuid"
)

// Outcome classifies a guarded request. A TimedOut abort is distinct from a
// server-returned error: the resolver treats both as inconclusive, but call
// sites log and retry them differently.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeServerError
	OutcomeTimedOut
	OutcomeUnreachable
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeServerError:
		return "server_error"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeMalformed:
		return "malformed"
	}
	return "unknown"
}

// Conclusive reports whether the outcome carries a definite answer about the
// resource. Transport-level failures and server bugs are never conclusive.
func (o Outcome) Conclusive() bool {
	return o == OutcomeOK || o == OutcomeNotFound
}

// Client issues HTTP requests with a cancellation deadline per call.
type Client struct {
	http *http.Client
	log  logging.Logger
}

func NewClient(log logging.Logger) *Client {
	return &Client{http: &http.Client{}, log: log}
}

// Do sends the request and aborts it at the deadline. The timeout is a
// per-call parameter, not a global constant: login and profile saves tolerate
// longer waits than passive background checks.
//
// The returned status is zero when no response was received.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, timeout time.Duration) (int, []byte, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, OutcomeUnreachable
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		outcome := OutcomeUnreachable
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = OutcomeTimedOut
		}
		c.log.Warn(ctx, "request failed", "method", method, "url", url, "request_id", requestID, "outcome", outcome.String())
		return 0, nil, outcome
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn(ctx, "response body read failed", "url", url, "request_id", requestID)
		return resp.StatusCode, nil, OutcomeMalformed
	}

	outcome := classifyStatus(resp.StatusCode)
	c.log.Debug(ctx, "request done", "method", method, "url", url, "request_id", requestID,
		"status", resp.StatusCode, "outcome", outcome.String())
	return resp.StatusCode, data, outcome
}

func classifyStatus(status int) Outcome {
	switch {
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status >= 200 && status < 300:
		return OutcomeOK
	default:
		return OutcomeServerError
	}
}
