package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"wbroadcast/internal/broadcast"
	"wbroadcast/internal/config"
	"wbroadcast/internal/database"
	"wbroadcast/internal/models"
	"wbroadcast/internal/template"
	"wbroadcast/internal/whatsapp"
	"wbroadcast/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BroadcastHandler struct {
	Client *whatsapp.Client
	Config *config.Config
	Hub    *ws.Hub
}

func NewBroadcastHandler(client *whatsapp.Client, cfg *config.Config, hub *ws.Hub) *BroadcastHandler {
	return &BroadcastHandler{Client: client, Config: cfg, Hub: hub}
}

// CreateBroadcastForm is the console's new-broadcast form payload.
type CreateBroadcastForm struct {
	Name               string            `json:"name"`
	TemplateName       string            `json:"templateName"`
	ContactIDs         []string          `json:"contactIds"`
	Variables          map[string]string `json:"variables"`
	ScheduleMode       string            `json:"scheduleMode"`
	ScheduleDate       string            `json:"scheduleDate"`
	ScheduleTime       string            `json:"scheduleTime"`
	RateLimitPerMinute int               `json:"rateLimitPerMinute"`
}

// CreateBroadcast validates the form through the request builder and, on
// success, records the campaign with one pending message per recipient. The
// builder gets the currently approved template set; flagged or pending
// templates are not selectable.
func (h *BroadcastHandler) CreateBroadcast(c *gin.Context) {
	var form CreateBroadcastForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templates, err := loadApprovedTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	state := broadcast.FormState{
		CampaignName: form.Name,
		TemplateName: form.TemplateName,
		ContactIDs:   form.ContactIDs,
		Variables:    form.Variables,
		ScheduleMode: form.ScheduleMode,
		ScheduleDate: form.ScheduleDate,
		ScheduleTime: form.ScheduleTime,
		RateLimit:    form.RateLimitPerMinute,
	}
	if state.ScheduleMode == "" {
		state.ScheduleMode = broadcast.ScheduleNow
	}
	if state.RateLimit == 0 && h.Config != nil {
		state.RateLimit = h.Config.DefaultRateLimit
	}

	var created models.Campaign
	sink := broadcast.SinkFunc(func(req *broadcast.Request) error {
		campaign, err := h.createCampaign(req)
		if err != nil {
			return err
		}
		created = campaign
		return nil
	})

	if _, err := broadcast.Submit(state, templates, time.Now(), sink); err != nil {
		var validationErr *broadcast.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "code": validationErr.Code})
			return
		}
		var submissionErr *broadcast.SubmissionError
		if errors.As(err, &submissionErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": submissionErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "Campaign created", "campaign": created})
}

// createCampaign is the submission sink: it persists the campaign and its
// per-recipient messages, then dispatches immediately when the send time has
// arrived. Deferred campaigns stay in scheduled state.
func (h *BroadcastHandler) createCampaign(req *broadcast.Request) (models.Campaign, error) {
	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return models.Campaign{}, err
	}

	var contacts []models.Contact
	if err := database.GormDB.Where("id IN ?", req.ContactIDs).Find(&contacts).Error; err != nil {
		return models.Campaign{}, err
	}

	msgTemplate := template.MessageTemplate{
		Name:       req.TemplateName,
		Language:   req.TemplateLanguage,
		Components: req.TemplateComponents,
	}
	content := template.RenderPreview(msgTemplate, req.Variables)

	variablesJSON := "{}"
	if varBytes, err := json.Marshal(req.Variables); err == nil {
		variablesJSON = string(varBytes)
	}

	campaign := models.Campaign{
		ID:                 uuid.NewString(),
		Name:               req.Name,
		TemplateName:       req.TemplateName,
		TemplateLanguage:   req.TemplateLanguage,
		Status:             models.CampaignScheduled,
		ScheduledAt:        scheduledAt,
		RateLimitPerMinute: req.RateLimitPerMinute,
		Provider:           req.Provider,
		Recipients:         len(contacts),
	}

	messages := make([]models.CampaignMessage, 0, len(contacts))
	for _, contact := range contacts {
		messages = append(messages, models.CampaignMessage{
			ID:           uuid.NewString(),
			CampaignID:   campaign.ID,
			ContactID:    contact.ID,
			ContactName:  contact.Name,
			ContactPhone: contact.Phone,
			Content:      content,
			Variables:    variablesJSON,
			Status:       models.StatusPending,
		})
	}

	if err := database.GormDB.Create(&campaign).Error; err != nil {
		return models.Campaign{}, err
	}
	if len(messages) > 0 {
		if err := database.GormDB.Create(&messages).Error; err != nil {
			return models.Campaign{}, err
		}
	}

	if !scheduledAt.After(time.Now()) {
		h.dispatch(&campaign, messages, msgTemplate, req.Variables)
	}

	if h.Hub != nil {
		h.Hub.NotifyCampaign(campaign)
	}
	return campaign, nil
}

// dispatch sends the campaign's messages one by one, the same way a manual
// broadcast would. Per-message failures are recorded and do not stop the
// rest of the run.
func (h *BroadcastHandler) dispatch(campaign *models.Campaign, messages []models.CampaignMessage, msgTemplate template.MessageTemplate, bindings map[string]string) {
	campaign.Status = models.CampaignSending
	database.GormDB.Save(campaign)

	// Body parameters in placeholder order, as the Cloud API expects.
	var bodyParams []string
	for _, v := range template.ExtractVariables(msgTemplate) {
		bodyParams = append(bodyParams, bindings[v.Name])
	}

	successCount := 0
	for i := range messages {
		msg := &messages[i]
		waMessageID, err := h.Client.SendTemplateMessage(msg.ContactPhone, campaign.TemplateName, campaign.TemplateLanguage, bodyParams)
		now := time.Now()
		if err != nil {
			log.Printf("Failed to broadcast to %s: %v", msg.ContactPhone, err)
			msg.Status = models.StatusFailed
			msg.ErrorMessage = err.Error()
		} else {
			msg.Status = models.StatusSent
			msg.WhatsAppMessageID = waMessageID
			msg.SentAt = &now
			successCount++
		}
		if err := database.GormDB.Save(msg).Error; err != nil {
			log.Printf("Error updating message %s: %v", msg.ID, err)
		}
		if h.Hub != nil {
			h.Hub.NotifyMessageStatus(*msg)
		}
	}

	if successCount == 0 && len(messages) > 0 {
		campaign.Status = models.CampaignFailed
	} else {
		campaign.Status = models.CampaignCompleted
	}
	database.GormDB.Save(campaign)
	log.Printf("Campaign %s processed: sent %d of %d", campaign.ID, successCount, len(messages))
}

func loadApprovedTemplates() ([]template.MessageTemplate, error) {
	var rows []models.Template
	if err := database.GormDB.Where("status = ?", "approved").Find(&rows).Error; err != nil {
		return nil, err
	}

	templates := make([]template.MessageTemplate, 0, len(rows))
	for _, row := range rows {
		t, err := ParseTemplate(row)
		if err != nil {
			log.Printf("Skipping corrupt template %s: %v", row.Name, err)
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}
