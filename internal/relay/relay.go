// Package relay forwards chat messages to an automation webhook and decodes
// its reply. One message is one POST; nothing is retried.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sourcetalk/internal/logging"
	"sourcetalk/internal/metrics"
)

// NoResponse is the message reported when the webhook answered with a shape
// that carries no output.
const NoResponse = "No response received"

// ErrNoWebhook is reported when no webhook URL is configured.
var ErrNoWebhook = errors.New("chat webhook URL not configured")

// Config configures a Client.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// Client posts chat messages to the webhook.
type Client struct {
	webhookURL string
	client     *http.Client
}

// NewClient creates a relay client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		webhookURL: cfg.WebhookURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Response is the outcome of one relay call. Failures carry an empty
// Message and the error text.
type Response struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Shape is the reply form the webhook used. ShapeUnknown with Success
	// means Message is NoResponse.
	Shape Shape `json:"shape"`
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

type request struct {
	Data string `json:"data"`
}

// Send posts message and waits for the reply. It never returns a Go error:
// transport failures, non-2xx statuses and undecodable bodies all become a
// failed Response.
func (c *Client) Send(ctx context.Context, message string) Response {
	if c.webhookURL == "" {
		return failure(ErrNoWebhook)
	}

	timer := metrics.NewTimer()
	resp := c.send(ctx, message)

	outcome := metrics.OutcomeSuccess
	if !resp.Success {
		outcome = metrics.OutcomeFailure
		logging.RelayError("relay failed after %s: %s", timer.Duration().Round(time.Millisecond), resp.Error)
	} else {
		logging.Relay("relay reply (%s, %d chars) in %s", resp.Shape, len(resp.Message), timer.Duration().Round(time.Millisecond))
	}
	metrics.RecordRelayCall(outcome, resp.Shape.String(), timer.Duration())
	return resp
}

func (c *Client) send(ctx context.Context, message string) Response {
	body, err := json.Marshal(request{Data: message})
	if err != nil {
		return failure(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	logging.RelayDebug("POST webhook (%d chars)", len(message))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(fmt.Errorf("HTTP error! status: %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Errorf("failed to read reply: %w", err))
	}

	reply, err := DecodeReply(data)
	if err != nil {
		return failure(err)
	}

	if reply.Shape == ShapeUnknown {
		return Response{Message: NoResponse, Success: true, Shape: ShapeUnknown}
	}
	return Response{Message: reply.Output, Success: true, Shape: reply.Shape}
}
