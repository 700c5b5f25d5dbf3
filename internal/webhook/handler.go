package webhook

import (
	"log"
	"net/http"
	"strings"

	"waha-gateway/internal/config"
	"waha-gateway/internal/store"
	"waha-gateway/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Event kinds recognized in WAHA callbacks.
const (
	eventMessagesUpsert = "messages.upsert"
	eventMessagesUpdate = "messages.update"
)

type Handler struct {
	Config *config.Config
	Store  *store.Store
	Hub    *ws.Hub
}

func NewHandler(cfg *config.Config, st *store.Store, hub *ws.Hub) *Handler {
	return &Handler{Config: cfg, Store: st, Hub: hub}
}

// HandleWebhook receives events pushed by the WAHA instance. The raw payload
// is archived before any processing so a malformed event is never lost, and
// the response is always {"status": "ok"} unless session validation fails.
// WAHA retries deliveries, so everything downstream must be idempotent.
func (h *Handler) HandleWebhook(c *gin.Context) {
	if !h.validSession(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid WAHA session"})
		return
	}

	payload := ExtractPayload(c)

	eventID := uuid.NewString()
	h.Store.Archive(eventID, "WAHA Webhook", payload)

	h.processEvent(eventID, payload)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validSession enforces the configured session identifier. With no session
// configured every request is accepted.
func (h *Handler) validSession(c *gin.Context) bool {
	expected := strings.TrimSpace(h.Config.WahaSession)
	if expected == "" {
		return true
	}

	provided := c.Query("session")
	if provided == "" {
		provided = c.PostForm("session")
	}
	return strings.TrimSpace(provided) == expected
}

// processEvent classifies the top-level event and dispatches it. Decoding
// problems degrade to skips; nothing here propagates to the HTTP response.
func (h *Handler) processEvent(eventID string, payload map[string]any) {
	event := strings.ToLower(strings.TrimSpace(getString(payload, "event")))

	envelope, ok := asMap(payload["data"])
	if !ok {
		envelope, _ = asMap(payload["payload"])
	}

	switch event {
	case eventMessagesUpsert:
		if messages, ok := asList(envelope["messages"]); ok {
			h.reconcileUpsert(messages)
		}
	case eventMessagesUpdate:
		entries, ok := asList(envelope["messages"])
		if !ok {
			entries, _ = asList(envelope["updates"])
		}
		h.reconcileUpdate(entries)
	case "":
		// Older WAHA versions post a bare message list without an event
		// envelope.
		if messages, ok := asList(payload["messages"]); ok {
			h.reconcileUpsert(messages)
			return
		}
		log.Printf("Webhook event %s: no event kind and no message list, archived only", eventID)
	default:
		log.Printf("Webhook event %s: unknown event kind %q, archived only", eventID, event)
	}
}
