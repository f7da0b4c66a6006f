package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClient_CreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req SessionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 100.0, req.Amount)
		assert.Equal(t, "usd", req.Currency)
		assert.Equal(t, "booking-1", req.Metadata["booking_id"])

		json.NewEncoder(w).Encode(Session{SessionID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk_test"})

	session, err := client.CreateSession(context.Background(), SessionRequest{
		Amount:   100.0,
		Metadata: map[string]string{"booking_id": "booking-1"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_test_1", session.URL)
}

func TestClient_CreateSession_EmptySessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Session{})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk_test"})

	_, err := client.CreateSession(context.Background(), SessionRequest{Amount: 100.0})

	assert.Error(t, err)
}

func TestClient_GetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)

		json.NewEncoder(w).Encode(Status{
			SessionID:     "cs_test_1",
			PaymentStatus: PaymentStatusPaid,
			AmountTotal:   100.0,
			Currency:      "usd",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk_test"})

	status, err := client.GetStatus(context.Background(), "cs_test_1")

	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, status.PaymentStatus)
	assert.Equal(t, 100.0, status.AmountTotal)
}

func TestClient_GetStatus_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such session"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk_test"})

	_, err := client.GetStatus(context.Background(), "cs_missing")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func signBody(secret string, body []byte) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestClient_VerifyWebhook_Valid(t *testing.T) {
	client := NewClient(Config{WebhookSecret: "whsec_test"})

	body := []byte(`{"event_type":"checkout.session.completed","session_id":"cs_test_1","payment_status":"paid"}`)
	header := signBody("whsec_test", body)

	event, err := client.VerifyWebhook(body, header)

	assert.NoError(t, err)
	assert.Equal(t, "cs_test_1", event.SessionID)
	assert.Equal(t, PaymentStatusPaid, event.PaymentStatus)
}

func TestClient_VerifyWebhook_WrongSecret(t *testing.T) {
	client := NewClient(Config{WebhookSecret: "whsec_test"})

	body := []byte(`{"session_id":"cs_test_1","payment_status":"paid"}`)
	header := signBody("whsec_other", body)

	_, err := client.VerifyWebhook(body, header)

	assert.True(t, domain.IsAuth(err))
}

func TestClient_VerifyWebhook_TamperedBody(t *testing.T) {
	client := NewClient(Config{WebhookSecret: "whsec_test"})

	body := []byte(`{"session_id":"cs_test_1","payment_status":"paid"}`)
	header := signBody("whsec_test", body)
	tampered := []byte(`{"session_id":"cs_test_2","payment_status":"paid"}`)

	_, err := client.VerifyWebhook(tampered, header)

	assert.True(t, domain.IsAuth(err))
}

func TestClient_VerifyWebhook_MalformedHeader(t *testing.T) {
	client := NewClient(Config{WebhookSecret: "whsec_test"})

	_, err := client.VerifyWebhook([]byte(`{}`), "garbage")

	assert.True(t, domain.IsAuth(err))
}

func TestClient_VerifyWebhook_MissingSessionID(t *testing.T) {
	client := NewClient(Config{WebhookSecret: "whsec_test"})

	body := []byte(`{"payment_status":"paid"}`)
	header := signBody("whsec_test", body)

	_, err := client.VerifyWebhook(body, header)

	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, "usd", client.Currency())
	assert.Equal(t, "stripe", client.Method())
}
