package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func newTestClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(2 * time.Second)
	return client
}

func TestTelegramChannelDeliverSuccess(t *testing.T) {
	t.Parallel()

	var gotBody sendMessageRequest
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotPath = r.URL.Path

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer server.Close()

	ch, err := NewTelegramChannelWithClient("bot-token", "chat-1", server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewTelegramChannelWithClient() error = %v", err)
	}

	result, err := ch.Deliver(context.Background(), "fraud alert body")
	if err != nil {
		t.Fatalf("Deliver() unexpected error: %v", err)
	}

	if result.MessageID != "42" {
		t.Fatalf("MessageID = %q, want %q", result.MessageID, "42")
	}
	if result.Content != "fraud alert body" {
		t.Fatalf("Content = %q, want original content", result.Content)
	}
	if gotBody.ChatID != "chat-1" {
		t.Fatalf("chat_id = %q, want chat-1", gotBody.ChatID)
	}
	if gotBody.Text != "fraud alert body" {
		t.Fatalf("text = %q, want alert body", gotBody.Text)
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("path = %q, want /botbot-token/sendMessage", gotPath)
	}
}

func TestTelegramChannelDeliverAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	ch, err := NewTelegramChannelWithClient("bad-token", "chat-1", server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewTelegramChannelWithClient() error = %v", err)
	}

	result, err := ch.Deliver(context.Background(), "fraud alert body")
	if result != nil {
		t.Fatalf("Deliver() result = %+v, want nil on failure", result)
	}

	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Deliver() error = %T, want *DeliveryError", err)
	}
	if deliveryErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("StatusCode = %d, want 401", deliveryErr.StatusCode)
	}
	if !strings.Contains(deliveryErr.Error(), "Unauthorized") {
		t.Fatalf("error %q should carry the API description", deliveryErr.Error())
	}
}

func TestTelegramChannelDeliverOKFalseWith200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	ch, err := NewTelegramChannelWithClient("bot-token", "missing-chat", server.URL, newTestClient())
	if err != nil {
		t.Fatalf("NewTelegramChannelWithClient() error = %v", err)
	}

	_, err = ch.Deliver(context.Background(), "fraud alert body")
	var deliveryErr *DeliveryError
	if !errors.As(err, &deliveryErr) {
		t.Fatalf("Deliver() error = %T, want *DeliveryError", err)
	}
	if !strings.Contains(deliveryErr.Error(), "chat not found") {
		t.Fatalf("error %q should carry the API description", deliveryErr.Error())
	}
}

func TestTelegramChannelConstructorValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewTelegramChannelWithClient("", "chat", "", newTestClient()); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewTelegramChannelWithClient("token", "  ", "", newTestClient()); err == nil {
		t.Fatal("expected error for missing chat id")
	}
	if _, err := NewTelegramChannelWithClient("token", "chat", "", nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestTelegramChannelDeliverEmptyContent(t *testing.T) {
	t.Parallel()

	ch, err := NewTelegramChannel("token", "chat")
	if err != nil {
		t.Fatalf("NewTelegramChannel() error = %v", err)
	}

	if _, err := ch.Deliver(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestSimulatedChannelDeliver(t *testing.T) {
	t.Parallel()

	ch := NewSimulatedChannel(nil)

	result, err := ch.Deliver(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Deliver() unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.MessageID, "simulated-") {
		t.Fatalf("MessageID = %q, want simulated- prefix", result.MessageID)
	}
	if result.Content != "anything" {
		t.Fatalf("Content = %q, want original content", result.Content)
	}

	second, err := ch.Deliver(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Deliver() unexpected error: %v", err)
	}
	if second.MessageID == result.MessageID {
		t.Fatal("synthetic message ids should be unique per delivery")
	}
}
