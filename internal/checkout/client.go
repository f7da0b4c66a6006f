package checkout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avolare/skybook/internal/domain"
)

// PaymentStatusPaid is the provider-side terminal status a session reaches
// once the customer completes checkout.
const PaymentStatusPaid = "paid"

type Config struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Currency      string
	Method        string
}

type SessionRequest struct {
	Amount     float64           `json:"amount"`
	Currency   string            `json:"currency"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type Session struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type Status struct {
	SessionID     string  `json:"session_id"`
	PaymentStatus string  `json:"payment_status"`
	AmountTotal   float64 `json:"amount_total"`
	Currency      string  `json:"currency"`
}

type WebhookEvent struct {
	EventType     string `json:"event_type"`
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
}

// Client talks to the hosted-checkout provider over its REST API.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Method == "" {
		cfg.Method = "stripe"
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Currency() string { return c.cfg.Currency }

func (c *Client) Method() string { return c.cfg.Method }

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if req.Currency == "" {
		req.Currency = c.cfg.Currency
	}

	var session Session
	if err := c.post(ctx, "/v1/checkout/sessions", req, &session); err != nil {
		return nil, err
	}
	if session.SessionID == "" {
		return nil, fmt.Errorf("checkout provider returned empty session id")
	}
	return &session, nil
}

func (c *Client) GetStatus(ctx context.Context, sessionID string) (*Status, error) {
	var status Status
	if err := c.get(ctx, "/v1/checkout/sessions/"+sessionID, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// VerifyWebhook authenticates a webhook delivery and extracts the event.
// The signature header carries `t=<unix>,v1=<hex hmac>` where the MAC is
// HMAC-SHA256 over "<t>.<body>" keyed with the webhook secret.
func (c *Client) VerifyWebhook(body []byte, signatureHeader string) (*WebhookEvent, error) {
	timestamp, signature, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, domain.AuthError{Msg: "invalid webhook signature", Err: err}
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, domain.AuthError{Msg: "invalid webhook signature"}
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("parse webhook payload: %w", err)
	}
	if event.SessionID == "" {
		return nil, fmt.Errorf("webhook payload missing session id")
	}
	return &event, nil
}

func parseSignatureHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", fmt.Errorf("malformed signature header")
	}
	return timestamp, signature, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("checkout provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("checkout provider %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return json.Unmarshal(respBody, out)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}
