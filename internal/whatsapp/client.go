// Package whatsapp is a thin client for the WhatsApp Cloud API: it pulls the
// account's message templates and sends template messages for broadcasts.
package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"wbroadcast/internal/config"
	"wbroadcast/internal/template"
)

type Client struct {
	Config *config.Config
}

func NewClient(cfg *config.Config) *Client {
	return &Client{Config: cfg}
}

// --- Message Structures ---

type TemplateMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Template         TemplateObj `json:"template"`
}

type TemplateObj struct {
	Name       string         `json:"name"`
	Language   LanguageObj    `json:"language"`
	Components []ComponentObj `json:"components,omitempty"`
}

type LanguageObj struct {
	Code string `json:"code"`
}

type ComponentObj struct {
	Type       string         `json:"type"`
	Parameters []ParameterObj `json:"parameters"`
}

type ParameterObj struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type SendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// TemplateRecord is one template as reported by the template management API.
type TemplateRecord struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Language   string               `json:"language"`
	Category   string               `json:"category"`
	Status     string               `json:"status"`
	Components []template.Component `json:"components"`
}

// --- Helper Functions ---

func (c *Client) sendRequest(method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}

// --- Template Management Methods ---

// GetTemplates fetches the account's message templates and decodes them into
// typed records at the boundary. Entries without a name are malformed and
// skipped rather than passed along.
func (c *Client) GetTemplates() ([]TemplateRecord, error) {
	url := fmt.Sprintf("%s/%s/message_templates", c.Config.GraphAPIBase, c.Config.WhatsAppBusinessAccountID)
	resp, err := c.sendRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []TemplateRecord `json:"data"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("invalid template list response: %w", err)
	}

	records := make([]TemplateRecord, 0, len(result.Data))
	for _, rec := range result.Data {
		if rec.Name == "" {
			log.Printf("Skipping malformed template record (id=%q)", rec.ID)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// --- Messaging Methods ---

// SendTemplateMessage sends one template message. bodyParams are the
// resolved variable values, in placeholder order; they become text
// parameters on the body component. Returns the WhatsApp message ID.
func (c *Client) SendTemplateMessage(to, templateName, languageCode string, bodyParams []string) (string, error) {
	msg := TemplateMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: TemplateObj{
			Name: templateName,
			Language: LanguageObj{
				Code: languageCode,
			},
		},
	}

	if len(bodyParams) > 0 {
		params := make([]ParameterObj, 0, len(bodyParams))
		for _, p := range bodyParams {
			params = append(params, ParameterObj{Type: "text", Text: p})
		}
		msg.Template.Components = []ComponentObj{
			{Type: "body", Parameters: params},
		}
	}

	url := fmt.Sprintf("%s/%s/messages", c.Config.GraphAPIBase, c.Config.PhoneNumberID)
	resp, err := c.sendRequest("POST", url, msg)
	if err != nil {
		return "", err
	}

	var sendResp SendResponse
	if err := json.Unmarshal(resp, &sendResp); err != nil {
		return "", err
	}
	if len(sendResp.Messages) == 0 {
		return "", nil
	}
	return sendResp.Messages[0].ID, nil
}
