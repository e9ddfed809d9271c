package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func signClerkPayload(secret, svixID, svixTimestamp string, body []byte) string {
	signedContent := fmt.Sprintf("%s.%s.%s", svixID, svixTimestamp, body)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedContent))
	return "v1," + hex.EncodeToString(mac.Sum(nil))
}

func TestClerkWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	h := NewWebhookHandler(nil)

	body := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/clerk", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,deadbeef")
	rec := httptest.NewRecorder()

	h.HandleClerkWebhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for forged signature, got %d", rec.Code)
	}
}

func TestClerkWebhookRejectsMissingSignatureHeaders(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test")

	h := NewWebhookHandler(nil)

	body := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/clerk", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleClerkWebhook(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without svix headers, got %d", rec.Code)
	}
}

func TestClerkWebhookAcceptsValidSignatureForUnknownEvent(t *testing.T) {
	const secret = "whsec_test"
	t.Setenv("CLERK_WEBHOOK_SECRET", secret)

	h := NewWebhookHandler(nil)

	body := []byte(`{"type":"session.created","data":{"id":"sess_123"}}`)
	req := httptest.NewRequest("POST", "/api/v1/webhooks/clerk", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", signClerkPayload(secret, "msg_1", "1700000000", body))
	rec := httptest.NewRecorder()

	h.HandleClerkWebhook(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for properly signed unknown event, got %d", rec.Code)
	}
}

func TestClerkWebhookRejectsMalformedJSON(t *testing.T) {
	t.Setenv("CLERK_WEBHOOK_SECRET", "")

	h := NewWebhookHandler(nil)

	req := httptest.NewRequest("POST", "/api/v1/webhooks/clerk", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.HandleClerkWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed payload, got %d", rec.Code)
	}
}
