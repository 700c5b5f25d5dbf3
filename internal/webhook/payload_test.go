package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func extractFrom(t *testing.T, contentType, body string) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", contentType)
	return ExtractPayload(c)
}

func TestExtractPayloadJSON(t *testing.T) {
	payload := extractFrom(t, "application/json", `{"event":"messages.upsert","data":{}}`)
	if payload["event"] != "messages.upsert" {
		t.Errorf("expected event field, got %v", payload)
	}
}

func TestExtractPayloadFormFallback(t *testing.T) {
	payload := extractFrom(t, "application/x-www-form-urlencoded", "event=messages.upsert&cmd=webhook")
	if payload["event"] != "messages.upsert" {
		t.Errorf("expected form field decoded, got %v", payload)
	}
	if _, exists := payload["cmd"]; exists {
		t.Error("control field cmd must be excluded")
	}
}

func TestExtractPayloadGarbage(t *testing.T) {
	payload := extractFrom(t, "application/json", "][ not json")
	if len(payload) != 0 {
		t.Errorf("expected empty mapping, got %v", payload)
	}
}

func TestExtractPayloadEmptyBody(t *testing.T) {
	payload := extractFrom(t, "application/json", "")
	if len(payload) != 0 {
		t.Errorf("expected empty mapping, got %v", payload)
	}
}
