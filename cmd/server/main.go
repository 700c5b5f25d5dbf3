package main

import (
	"log"

	"waha-gateway/internal/api"
	"waha-gateway/internal/config"
	"waha-gateway/internal/database"
	"waha-gateway/internal/messaging"
	"waha-gateway/internal/store"
	"waha-gateway/internal/waha"
	"waha-gateway/internal/webhook"
	"waha-gateway/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	db := database.Init(cfg)
	st := store.New(db)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	hub := ws.NewHub()
	go hub.Run()

	wahaClient := waha.NewClient(cfg)
	sendService := messaging.NewService(cfg, st, wahaClient)
	webhookHandler := webhook.NewHandler(cfg, st, hub)
	messageHandler := api.NewMessageHandler(cfg, st, sendService)
	templateHandler := api.NewTemplateHandler(st)

	// Webhook route registered with the WAHA instance
	r.POST("/webhook", webhookHandler.HandleWebhook)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/messages", messageHandler.GetMessages)
		apiGroup.GET("/messages/status", messageHandler.GetMessageStatus)
		apiGroup.POST("/send", messageHandler.SendMessage)
		apiGroup.GET("/webhook-url", messageHandler.GetWebhookURL)

		apiGroup.GET("/templates", templateHandler.GetTemplates)
		apiGroup.GET("/templates/:name", templateHandler.GetTemplate)
		apiGroup.POST("/templates", templateHandler.SaveTemplate)
		apiGroup.DELETE("/templates/:name", templateHandler.DeleteTemplate)
	}

	// Dashboard live feed
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	log.Printf("Webhook URL for WAHA: %s", waha.WebhookURL(cfg.PublicURL, cfg.WahaSession))
	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
