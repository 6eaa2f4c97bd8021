package main

import (
	"log"

	"wbroadcast/internal/api"
	"wbroadcast/internal/config"
	"wbroadcast/internal/database"
	"wbroadcast/internal/webhook"
	"wbroadcast/internal/whatsapp"
	"wbroadcast/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)

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

	whatsappClient := whatsapp.NewClient(cfg)
	webhookHandler := webhook.NewHandler(cfg, hub)
	templateHandler := api.NewTemplateHandler(whatsappClient, cfg)
	contactHandler := api.NewContactHandler()
	broadcastHandler := api.NewBroadcastHandler(whatsappClient, cfg, hub)
	historyHandler := api.NewHistoryHandler()

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleStatus)

	// Console API Routes
	apiGroup := r.Group("/api")
	{
		// Template Routes
		apiGroup.GET("/templates", templateHandler.GetTemplates)
		apiGroup.POST("/templates/sync", templateHandler.SyncTemplates)
		apiGroup.POST("/templates/preview", templateHandler.PreviewTemplate)

		// Contact Routes
		apiGroup.GET("/contacts", contactHandler.GetContacts)
		apiGroup.POST("/contacts", contactHandler.CreateContact)
		apiGroup.PUT("/contacts/:id", contactHandler.UpdateContact)
		apiGroup.DELETE("/contacts/:id", contactHandler.DeleteContact)
		apiGroup.GET("/contacts/export", contactHandler.ExportContacts)

		// Broadcast Routes
		apiGroup.POST("/broadcasts", broadcastHandler.CreateBroadcast)

		// History Routes
		apiGroup.GET("/campaigns", historyHandler.GetCampaigns)
		apiGroup.GET("/campaigns/:id/messages", historyHandler.GetCampaignMessages)
	}

	// Live status updates for the history view
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
