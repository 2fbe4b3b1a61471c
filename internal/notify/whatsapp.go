// Package notify delivers alert messages to the WhatsApp gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyMessage     = errors.New("message is required")
	ErrEmptyPhoneNumber = errors.New("phone number is required")
)

// Request is the gateway's send payload.
type Request struct {
	Message     string `json:"message"`
	PhoneNumber string `json:"phoneNumber"`
	Type        string `json:"type"`
}

// Response is the gateway's send result.
type Response struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid"`
	Type       string `json:"type"`
}

type gatewayError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WhatsAppClient talks to the Twilio-backed WhatsApp gateway over HTTP.
type WhatsAppClient struct {
	baseURL     string
	phoneNumber string
	httpClient  *http.Client
}

// Option configures a WhatsAppClient.
type Option func(*WhatsAppClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(w *WhatsAppClient) { w.httpClient = c }
}

func NewWhatsAppClient(baseURL, phoneNumber string, opts ...Option) *WhatsAppClient {
	w := &WhatsAppClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		phoneNumber: phoneNumber,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Send delivers one message of the given type to the configured number.
func (w *WhatsAppClient) Send(ctx context.Context, message, msgType string) (*Response, error) {
	return w.SendTo(ctx, message, w.phoneNumber, msgType)
}

// SendTo delivers one message to an explicit phone number. Numbers without a
// country code prefix get one added by the gateway.
func (w *WhatsAppClient) SendTo(ctx context.Context, message, phoneNumber, msgType string) (*Response, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if phoneNumber == "" {
		return nil, ErrEmptyPhoneNumber
	}
	if msgType == "" {
		msgType = "general"
	}

	body, err := json.Marshal(Request{
		Message:     message,
		PhoneNumber: phoneNumber,
		Type:        msgType,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		w.baseURL+"/api/send-whatsapp-notification", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send whatsapp notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayError
		if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&gwErr); err == nil && gwErr.Error != "" {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, gwErr.Error)
		}
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	slog.InfoContext(ctx, "WhatsApp message sent",
		"message_sid", result.MessageSID,
		"type", result.Type)
	return &result, nil
}

// Health checks the gateway's health endpoint.
func (w *WhatsAppClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
