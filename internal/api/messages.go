package api

import (
	"errors"
	"net/http"

	"waha-gateway/internal/config"
	"waha-gateway/internal/messaging"
	"waha-gateway/internal/store"
	"waha-gateway/internal/waha"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Config  *config.Config
	Store   *store.Store
	Service *messaging.Service
}

func NewMessageHandler(cfg *config.Config, st *store.Store, svc *messaging.Service) *MessageHandler {
	return &MessageHandler{Config: cfg, Store: st, Service: svc}
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	messages, err := h.Store.ListMessages(200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req messaging.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Service.Send(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, messaging.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		resp := gin.H{"error": err.Error()}
		if msg != nil {
			resp["id"] = msg.ID
			resp["status"] = msg.Status
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         msg.ID,
		"message_id": msg.ExternalID,
		"status":     msg.Status,
	})
}

func (h *MessageHandler) GetMessageStatus(c *gin.Context) {
	messageID := c.Query("message_id")
	msg, err := h.Service.GetStatus(messageID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         msg.ID,
		"message_id": msg.ExternalID,
		"status":     msg.Status,
	})
}

// GetWebhookURL returns the callback URL to register with the WAHA instance.
func (h *MessageHandler) GetWebhookURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"webhook_url": waha.WebhookURL(h.Config.PublicURL, h.Config.WahaSession),
	})
}
