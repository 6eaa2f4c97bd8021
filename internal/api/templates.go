package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"wbroadcast/internal/config"
	"wbroadcast/internal/database"
	"wbroadcast/internal/models"
	"wbroadcast/internal/template"
	"wbroadcast/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

// StatusFlagged marks a synced template whose placeholders are not a
// contiguous {{1}}..{{N}} run. Flagged templates render wrong, so they are
// quarantined out of the approved set instead of mis-rendering silently.
const StatusFlagged = "flagged"

type TemplateHandler struct {
	Client *whatsapp.Client
	Config *config.Config
}

func NewTemplateHandler(client *whatsapp.Client, cfg *config.Config) *TemplateHandler {
	return &TemplateHandler{Client: client, Config: cfg}
}

// SyncTemplates fetches templates from the Cloud API and stores them locally
func (h *TemplateHandler) SyncTemplates(c *gin.Context) {
	if h.Config.WhatsAppBusinessAccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "WABA_ID not configured in .env"})
		return
	}

	records, err := h.Client.GetTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates: " + err.Error()})
		return
	}

	syncedCount := 0
	flaggedCount := 0
	for _, rec := range records {
		status := strings.ToLower(rec.Status)

		msgTemplate := template.MessageTemplate{
			Name:       rec.Name,
			Language:   rec.Language,
			Components: rec.Components,
		}
		if err := template.CheckPlaceholders(msgTemplate); err != nil {
			log.Printf("Template %s has bad placeholders: %v", rec.Name, err)
			status = StatusFlagged
			flaggedCount++
		}

		componentsJSON := "[]"
		if compBytes, err := json.Marshal(rec.Components); err == nil {
			componentsJSON = string(compBytes)
		}

		row := models.Template{
			ID:         rec.ID,
			Name:       rec.Name,
			Language:   rec.Language,
			Category:   rec.Category,
			Status:     status,
			Components: componentsJSON,
		}

		if err := database.GormDB.Save(&row).Error; err != nil {
			log.Printf("Error saving template %s: %v", rec.Name, err)
			continue
		}
		syncedCount++
	}

	c.JSON(http.StatusOK, gin.H{"status": "Templates synced", "count": syncedCount, "flagged": flaggedCount})
}

// GetTemplates returns stored templates, optionally filtered by approval
// status (?status=approved)
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	query := database.GormDB
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}

	var rows []models.Template
	if err := query.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if rows == nil {
		rows = []models.Template{}
	}
	c.JSON(http.StatusOK, gin.H{"templates": rows})
}

type PreviewRequest struct {
	TemplateName string            `json:"templateName" binding:"required"`
	Variables    map[string]string `json:"variables"`
}

// PreviewTemplate renders the template body with the supplied bindings and
// reports which variables are still unfilled.
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var row models.Template
	if err := database.GormDB.Where("name = ?", req.TemplateName).First(&row).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	msgTemplate, err := ParseTemplate(row)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored template is corrupt: " + err.Error()})
		return
	}

	vars := template.ExtractVariables(msgTemplate)
	missing := template.ValidateBindings(vars, req.Variables)
	if missing == nil {
		missing = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"preview":   template.RenderPreview(msgTemplate, req.Variables),
		"variables": vars,
		"missing":   missing,
		"buttons":   msgTemplate.Buttons(),
	})
}

// ParseTemplate decodes a stored template row into the interpreter's typed
// form.
func ParseTemplate(row models.Template) (template.MessageTemplate, error) {
	t := template.MessageTemplate{
		Name:     row.Name,
		Language: row.Language,
	}
	if row.Components == "" {
		return t, nil
	}
	if err := json.Unmarshal([]byte(row.Components), &t.Components); err != nil {
		return template.MessageTemplate{}, err
	}
	return t, nil
}
