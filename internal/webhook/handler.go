// Package webhook ingests WhatsApp status callbacks and turns them into
// per-recipient delivery updates for the history view.
package webhook

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"wbroadcast/internal/config"
	"wbroadcast/internal/database"
	"wbroadcast/internal/models"
	"wbroadcast/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Config *config.Config
	Hub    *ws.Hub
}

func NewHandler(cfg *config.Config, hub *ws.Hub) *Handler {
	return &Handler{
		Config: cfg,
		Hub:    hub,
	}
}

// StatusPayload mirrors the subset of the webhook payload we act on:
// message status changes (sent / delivered / read / failed).
type StatusPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Statuses []StatusUpdate `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type StatusUpdate struct {
	ID        string `json:"id"` // WhatsApp message ID
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Errors    []struct {
		Code    int    `json:"code"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token != "" {
		if mode == "subscribe" && token == h.Config.VerifyToken {
			log.Println("Webhook verified successfully!")
			c.String(http.StatusOK, challenge)
		} else {
			c.Status(http.StatusForbidden)
		}
	} else {
		c.Status(http.StatusBadRequest)
	}
}

func (h *Handler) HandleStatus(c *gin.Context) {
	var payload StatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding JSON: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, status := range change.Value.Statuses {
				h.applyStatus(status)
			}
		}
	}

	c.Status(http.StatusOK)
}

func (h *Handler) applyStatus(update StatusUpdate) {
	if update.ID == "" {
		return
	}

	var msg models.CampaignMessage
	if err := database.GormDB.Where("whats_app_message_id = ?", update.ID).First(&msg).Error; err != nil {
		// Status for a message we did not send (or not recorded yet).
		log.Printf("No campaign message for WhatsApp ID %s (status %s)", update.ID, update.Status)
		return
	}

	at := statusTime(update.Timestamp)
	switch update.Status {
	case models.StatusSent:
		msg.Status = models.StatusSent
		msg.SentAt = &at
	case models.StatusDelivered:
		msg.Status = models.StatusDelivered
		msg.DeliveredAt = &at
	case models.StatusRead:
		msg.Status = models.StatusRead
		msg.ReadAt = &at
	case models.StatusFailed:
		msg.Status = models.StatusFailed
		if len(update.Errors) > 0 {
			msg.ErrorMessage = update.Errors[0].Title
		}
	default:
		log.Printf("Ignoring unknown status %q for WhatsApp ID %s", update.Status, update.ID)
		return
	}

	if err := database.GormDB.Save(&msg).Error; err != nil {
		log.Printf("Error updating message status: %v", err)
		return
	}

	if h.Hub != nil {
		h.Hub.NotifyMessageStatus(msg)
	}
}

func statusTime(unix string) time.Time {
	if sec, err := strconv.ParseInt(unix, 10, 64); err == nil {
		return time.Unix(sec, 0)
	}
	return time.Now()
}
