package api

import (
	"fmt"
	"net/http"

	"wbroadcast/internal/database"
	"wbroadcast/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

type ContactHandler struct{}

func NewContactHandler() *ContactHandler {
	return &ContactHandler{}
}

func (h *ContactHandler) GetContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := database.GormDB.Order("created_at DESC").Find(&contacts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Return empty array instead of null
	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// CreateContactRequest for adding new contacts
type CreateContactRequest struct {
	WaID  string `json:"wa_id" binding:"required"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Tags  string `json:"tags"`
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := req.Phone
	if phone == "" {
		phone = req.WaID
	}

	contact := models.Contact{
		ID:    uuid.NewString(),
		WaID:  req.WaID,
		Name:  req.Name,
		Phone: phone,
		Tags:  req.Tags,
	}

	// Upsert on wa_id to avoid duplicates
	err := database.GormDB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wa_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "tags"}),
	}).Create(&contact).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "Contact created", "wa_id": req.WaID})
}

type UpdateContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Tags  string `json:"tags"`
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id := c.Param("id")
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := database.GormDB.Model(&models.Contact{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": req.Name, "phone": req.Phone, "tags": req.Tags})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Contact updated"})
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id := c.Param("id")

	result := database.GormDB.Where("id = ?", id).Delete(&models.Contact{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Contact deleted"})
}

func (h *ContactHandler) ExportContacts(c *gin.Context) {
	var contacts []models.Contact
	if err := database.GormDB.Order("created_at DESC").Find(&contacts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Build CSV content
	csv := "WhatsApp ID,Name,Phone,Tags,Created At\n"
	for _, contact := range contacts {
		csv += fmt.Sprintf("%s,%s,%s,%s,%s\n",
			contact.WaID, contact.Name, contact.Phone, contact.Tags,
			contact.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.String(http.StatusOK, csv)
}
