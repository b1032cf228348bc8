package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arkanlabs/shopgate/pkg/logger"
	"github.com/arkanlabs/shopgate/pkg/metrics"
)

const commandPathPrefix = "/rpc/"

var (
	errServiceNameRequired = errors.New("service name is required")
	errBaseURLRequired     = errors.New("service base url is required")
)

// Client issues JSON commands against one named upstream service.
// Every call is bounded by a per-call timeout and comes back as either
// a decoded result or a classified *Error.
type Client struct {
	service string
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *logger.Logger
	metrics *metrics.RPCMetrics
}

// NewClient validates the target and builds a command client for it.
func NewClient(service, baseURL string, timeout time.Duration, logg *logger.Logger, m *metrics.RPCMetrics) (*Client, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, errServiceNameRequired
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base url for %s: %w", service, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		service: service,
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{},
		logger:  logg,
		metrics: m,
	}, nil
}

// Service returns the upstream service name this client targets.
func (c *Client) Service() string {
	return c.service
}

// Call posts the payload to the named command and decodes the response
// into out. The per-call timeout never extends a deadline already
// carried by ctx.
func (c *Client) Call(ctx context.Context, command string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.do(ctx, command, payload, out)
	c.metrics.ObserveCall(c.service, command, time.Since(start))

	if err != nil {
		if typed := AsError(err); typed != nil {
			c.metrics.IncFailure(c.service, string(typed.Kind))
		}
		c.logError(ctx, command, err)
		return err
	}
	return nil
}

// Notify sends the payload to the named command without awaiting the
// outcome. One attempt, no retry; a failure is logged and dropped.
func (c *Client) Notify(ctx context.Context, command string, payload any) {
	// Detached from the request lifecycle so an already-finished
	// checkout cannot cancel the send.
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.do(ctx, command, payload, nil); err != nil {
			c.logError(ctx, command, err)
			return
		}
		if c.logger != nil {
			ctx = c.logger.WithFields(ctx, map[string]any{
				"remote_service": c.service,
				"command":        command,
			})
			c.logger.Debug(ctx, "rpc notify delivered")
		}
	}()
}

func (c *Client) do(ctx context.Context, command string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return c.classify(command, KindUnavailable, 0, "encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+commandPathPrefix+command, bytes.NewReader(body))
	if err != nil {
		return c.classify(command, KindUnavailable, 0, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return c.classify(command, KindTimeout, 0, "call timed out", err)
		}
		return c.classify(command, KindUnavailable, 0, "transport failure", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.rejection(command, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.classify(command, KindUnavailable, resp.StatusCode, "decode response", err)
	}
	return nil
}

// remoteError covers both snake_case and camelCase envelopes; the
// upstream services do not agree on one shape.
type remoteError struct {
	StatusCode      int    `json:"status_code"`
	StatusCodeCamel int    `json:"statusCode"`
	Message         string `json:"message"`
	ErrorText       string `json:"error"`
}

func (c *Client) rejection(command string, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return c.classify(command, KindUnavailable, resp.StatusCode, "read error body", err)
	}

	var remote remoteError
	if err := json.Unmarshal(raw, &remote); err != nil {
		// The remote did not speak the error contract; treat it as a
		// transport fault, not a business rejection.
		return c.classify(command, KindUnavailable, resp.StatusCode, "undecodable error body", err)
	}

	status := remote.StatusCode
	if status == 0 {
		status = remote.StatusCodeCamel
	}
	if status == 0 {
		status = resp.StatusCode
	}
	message := remote.Message
	if message == "" {
		message = remote.ErrorText
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &Error{
		Service:    c.service,
		Command:    command,
		Kind:       KindRejected,
		StatusCode: status,
		Message:    message,
	}
}

func (c *Client) classify(command string, kind ErrorKind, status int, message string, cause error) error {
	return &Error{
		Service:    c.service,
		Command:    command,
		Kind:       kind,
		StatusCode: status,
		Message:    message,
		cause:      cause,
	}
}

func (c *Client) logError(ctx context.Context, command string, err error) {
	if c.logger == nil {
		return
	}
	fields := map[string]any{
		"remote_service": c.service,
		"command":        command,
	}
	if typed := AsError(err); typed != nil {
		fields["kind"] = string(typed.Kind)
		if typed.StatusCode != 0 {
			fields["status_code"] = typed.StatusCode
		}
	}
	ctx = c.logger.WithFields(ctx, fields)
	c.logger.Error(ctx, "rpc call failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
