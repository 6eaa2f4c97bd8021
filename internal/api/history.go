package api

import (
	"net/http"
	"strings"

	"wbroadcast/internal/database"
	"wbroadcast/internal/models"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct{}

func NewHistoryHandler() *HistoryHandler {
	return &HistoryHandler{}
}

// GetCampaigns lists campaigns for the history view's dropdown, newest
// first.
func (h *HistoryHandler) GetCampaigns(c *gin.Context) {
	var campaigns []models.Campaign
	if err := database.GormDB.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// GetCampaignMessages returns the per-recipient delivery records of one
// campaign, optionally narrowed by ?status= and free-text ?search= over
// contact name, phone and message content.
func (h *HistoryHandler) GetCampaignMessages(c *gin.Context) {
	campaignID := c.Param("id")

	query := database.GormDB.Where("campaign_id = ?", campaignID)
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var messages []models.CampaignMessage
	if err := query.Order("created_at DESC").Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	messages = filterMessages(messages, c.Query("search"))
	if messages == nil {
		messages = []models.CampaignMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": len(messages)})
}

// filterMessages keeps the messages whose contact name, phone or content
// contains the search term, case-insensitively. An empty term keeps
// everything.
func filterMessages(messages []models.CampaignMessage, search string) []models.CampaignMessage {
	if search == "" {
		return messages
	}

	term := strings.ToLower(search)
	var filtered []models.CampaignMessage
	for _, msg := range messages {
		if strings.Contains(strings.ToLower(msg.ContactName), term) ||
			strings.Contains(strings.ToLower(msg.ContactPhone), term) ||
			strings.Contains(strings.ToLower(msg.Content), term) {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
