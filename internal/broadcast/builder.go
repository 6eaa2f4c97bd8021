// Package broadcast turns the new-broadcast form into a validated
// campaign-creation request and hands it to a submission sink.
package broadcast

import (
	"strings"
	"time"

	"wbroadcast/internal/template"
)

// Provider is the single supported messaging channel.
const Provider = "whatsapp"

// Request is the assembled broadcast-creation payload. Built once at
// submission time; this package does not track its lifecycle afterwards.
type Request struct {
	Name               string               `json:"name"`
	TemplateName       string               `json:"templateName"`
	TemplateLanguage   string               `json:"templateLanguage"`
	TemplateComponents []template.Component `json:"templateComponents"`
	ContactIDs         []string             `json:"contactIds"`
	Variables          map[string]string    `json:"variables"`
	ScheduledAt        string               `json:"scheduledAt"` // RFC 3339, UTC
	RateLimitPerMinute int                  `json:"rateLimitPerMinute"`
	Provider           string               `json:"provider"`
}

// ValidationError is a recoverable pre-submission failure. The caller
// surfaces Message to the operator and leaves the form untouched.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrMissingName       = &ValidationError{Code: "missing_name", Message: "Campaign name is required"}
	ErrMissingTemplate   = &ValidationError{Code: "missing_template", Message: "Please select a template"}
	ErrMissingRecipients = &ValidationError{Code: "missing_recipients", Message: "Please select at least one contact"}
	ErrMissingSchedule   = &ValidationError{Code: "missing_schedule", Message: "Please select date and time for scheduling"}
	ErrScheduleInPast    = &ValidationError{Code: "schedule_in_past", Message: "Scheduled time must be in the future"}
)

// SubmissionError wraps a failure from the external sink.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string { return "Failed to create campaign: " + e.Err.Error() }
func (e *SubmissionError) Unwrap() error { return e.Err }

// Sink receives the assembled request. The builder never performs transport
// itself; the caller injects whatever actually submits the campaign.
type Sink interface {
	SubmitBroadcast(req *Request) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(req *Request) error

func (f SinkFunc) SubmitBroadcast(req *Request) error { return f(req) }

// BuildRequest validates the form snapshot against the loaded template set
// and assembles the broadcast request. Checks run in a fixed order and stop
// at the first failure: name, template, recipients, schedule fields, then
// the resolved timestamp. now anchors the "send now" timestamp and the
// future-schedule check.
func BuildRequest(state FormState, templates []template.MessageTemplate, now time.Time) (*Request, error) {
	name := strings.TrimSpace(state.CampaignName)
	if name == "" {
		return nil, ErrMissingName
	}

	var selected *template.MessageTemplate
	for i := range templates {
		if templates[i].Name == state.TemplateName {
			selected = &templates[i]
			break
		}
	}
	if state.TemplateName == "" || selected == nil {
		return nil, ErrMissingTemplate
	}

	if len(state.ContactIDs) == 0 {
		return nil, ErrMissingRecipients
	}

	if state.ScheduleMode == ScheduleLater && (state.ScheduleDate == "" || state.ScheduleTime == "") {
		return nil, ErrMissingSchedule
	}

	scheduledAt := now
	if state.ScheduleMode == ScheduleLater {
		parsed, err := time.ParseInLocation("2006-01-02 15:04", state.ScheduleDate+" "+state.ScheduleTime, time.Local)
		if err != nil {
			return nil, ErrMissingSchedule
		}
		if !parsed.After(now) {
			return nil, ErrScheduleInPast
		}
		scheduledAt = parsed
	}

	variables := state.Variables
	if variables == nil {
		variables = map[string]string{}
	}

	return &Request{
		Name:               name,
		TemplateName:       selected.Name,
		TemplateLanguage:   selected.LanguageOrDefault(),
		TemplateComponents: selected.Components,
		ContactIDs:         append([]string(nil), state.ContactIDs...),
		Variables:          variables,
		ScheduledAt:        scheduledAt.UTC().Format(time.RFC3339),
		RateLimitPerMinute: NormalizeRateLimit(state.RateLimit),
		Provider:           Provider,
	}, nil
}

// Submit builds the request and delegates it to the sink. A sink failure
// comes back as a SubmissionError; the form state is untouched either way,
// so the operator can correct and resubmit.
func Submit(state FormState, templates []template.MessageTemplate, now time.Time, sink Sink) (*Request, error) {
	req, err := BuildRequest(state, templates, now)
	if err != nil {
		return nil, err
	}
	if err := sink.SubmitBroadcast(req); err != nil {
		return nil, &SubmissionError{Err: err}
	}
	return req, nil
}
