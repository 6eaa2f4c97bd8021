// Package template interprets WhatsApp message templates: it extracts the
// positional {{n}} placeholders from a template body, renders previews with
// operator-supplied values and checks that every placeholder is filled in
// before a broadcast goes out.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Component types as reported by the Graph API.
const (
	ComponentBody   = "BODY"
	ComponentButton = "BUTTON"
	ComponentHeader = "HEADER"
	ComponentFooter = "FOOTER"
)

// MessageTemplate is an approved WhatsApp template. Read-only once fetched;
// the template service owns it.
type MessageTemplate struct {
	Name       string      `json:"name"`
	Language   string      `json:"language"`
	Components []Component `json:"components"`
}

// Component is one section of a template. BODY text carries the positional
// placeholders; BUTTON text is a display label.
type Component struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Variable is a placeholder found in the BODY text. Name is the digit
// sequence captured from the {{n}} token.
type Variable struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Bindings maps a variable name to the operator-supplied value. An empty
// string counts as unfilled.
type Bindings map[string]string

var placeholderRe = regexp.MustCompile(`\{\{(\d+)\}\}`)

// LanguageOrDefault returns the template language, falling back to "en"
// when the template carries none.
func (t MessageTemplate) LanguageOrDefault() string {
	if t.Language == "" {
		return "en"
	}
	return t.Language
}

// Body returns the text of the first BODY component, or "" if the template
// has none.
func (t MessageTemplate) Body() string {
	for _, c := range t.Components {
		if c.Type == ComponentBody {
			return c.Text
		}
	}
	return ""
}

// Buttons returns the display labels of all BUTTON components.
func (t MessageTemplate) Buttons() []string {
	var labels []string
	for _, c := range t.Components {
		if c.Type == ComponentButton {
			labels = append(labels, c.Text)
		}
	}
	return labels
}

// ExtractVariables scans the BODY text left to right and returns one
// Variable per {{n}} match, in source order. Duplicate indices are kept,
// every entry is required. Malformed tokens like {{}} or {{abc}} never
// match and are left alone.
func ExtractVariables(t MessageTemplate) []Variable {
	body := t.Body()
	if body == "" {
		return nil
	}

	matches := placeholderRe.FindAllStringSubmatch(body, -1)
	if matches == nil {
		return nil
	}

	vars := make([]Variable, 0, len(matches))
	for _, m := range matches {
		vars = append(vars, Variable{Name: m[1], Required: true})
	}
	return vars
}

// RenderPreview substitutes placeholder tokens in the BODY text. Slot i
// (1-based, in extraction order) takes the bound value of the i-th extracted
// variable when that value is non-empty, otherwise the marker [VAR<i>].
// Tokens whose index falls outside 1..N stay literal.
//
// The body is scanned exactly once, so a substituted value is never itself
// re-scanned for tokens. Pure function: same template and bindings always
// produce the same string.
func RenderPreview(t MessageTemplate, bindings Bindings) string {
	body := t.Body()
	if body == "" {
		return ""
	}

	vars := ExtractVariables(t)
	return placeholderRe.ReplaceAllStringFunc(body, func(token string) string {
		idx, err := strconv.Atoi(placeholderRe.FindStringSubmatch(token)[1])
		if err != nil || idx < 1 || idx > len(vars) {
			return token
		}
		if v := bindings[vars[idx-1].Name]; v != "" {
			return v
		}
		return fmt.Sprintf("[VAR%d]", idx)
	})
}

// ValidateBindings reports the variables that are still unfilled. A variable
// is satisfied when its bound value is non-empty after trimming. The result
// is nil when the broadcast is ready to submit.
func ValidateBindings(vars []Variable, bindings Bindings) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, v := range vars {
		if !v.Required || seen[v.Name] {
			continue
		}
		seen[v.Name] = true
		if strings.TrimSpace(bindings[v.Name]) == "" {
			missing = append(missing, v.Name)
		}
	}
	return missing
}

// CheckPlaceholders verifies that the BODY placeholders form a contiguous
// 1-based run ({{1}}, {{2}}, ... in order). Rendering substitutes by slot
// position, so a template with gaps or reordered indices would mis-render;
// such templates are flagged at the fetch boundary instead.
func CheckPlaceholders(t MessageTemplate) error {
	for i, v := range ExtractVariables(t) {
		if v.Name != strconv.Itoa(i+1) {
			return fmt.Errorf("placeholder {{%s}} at position %d, expected {{%d}}", v.Name, i+1, i+1)
		}
	}
	return nil
}
