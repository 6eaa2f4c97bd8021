package models

import (
	"time"
)

// Campaign statuses.
const (
	CampaignScheduled = "scheduled"
	CampaignSending   = "sending"
	CampaignCompleted = "completed"
	CampaignFailed    = "failed"
)

// CampaignMessage statuses, in delivery order.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
)

// Template is a locally synced WhatsApp message template
type Template struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"type:varchar(255);uniqueIndex" json:"name"`
	Language   string `gorm:"type:varchar(50)" json:"language"`
	Category   string `gorm:"type:varchar(100)" json:"category"`
	Status     string `gorm:"type:varchar(50)" json:"status"`
	Components string `gorm:"type:text" json:"components"` // JSON components
}

func (Template) TableName() string {
	return "templates"
}

// Contact represents a broadcast recipient
type Contact struct {
	ID        string    `gorm:"primaryKey" json:"_id"`
	WaID      string    `gorm:"type:varchar(50);uniqueIndex" json:"wa_id"` // WhatsApp ID (phone number)
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Tags      string    `gorm:"type:text" json:"tags"` // Comma separated tags
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Campaign is one submitted broadcast
type Campaign struct {
	ID                 string    `gorm:"primaryKey" json:"_id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	TemplateName       string    `gorm:"type:varchar(255)" json:"template_name"`
	TemplateLanguage   string    `gorm:"type:varchar(50)" json:"template_language"`
	Status             string    `gorm:"type:varchar(20);default:'scheduled'" json:"status"`
	ScheduledAt        time.Time `gorm:"not null" json:"scheduled_at"`
	RateLimitPerMinute int       `gorm:"default:1000" json:"rate_limit_per_minute"`
	Provider           string    `gorm:"type:varchar(50)" json:"provider"`
	Recipients         int       `json:"recipients"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignMessage is the per-recipient delivery record behind the history view
type CampaignMessage struct {
	ID                string     `gorm:"primaryKey" json:"_id"`
	CampaignID        string     `gorm:"index;type:varchar(255);not null" json:"campaign_id"`
	ContactID         string     `gorm:"type:varchar(255)" json:"contact_id"`
	ContactName       string     `gorm:"type:varchar(255)" json:"contact_name"`
	ContactPhone      string     `gorm:"type:varchar(50)" json:"contact_phone"`
	Content           string     `gorm:"type:text" json:"content"`
	Variables         string     `gorm:"type:text" json:"variables"` // JSON bindings
	Status            string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	WhatsAppMessageID string     `gorm:"index;type:varchar(255)" json:"whatsapp_message_id"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	SentAt            *time.Time `json:"sent_at"`
	DeliveredAt       *time.Time `json:"delivered_at"`
	ReadAt            *time.Time `json:"read_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CampaignMessage) TableName() string {
	return "campaign_messages"
}
