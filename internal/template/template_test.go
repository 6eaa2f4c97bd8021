package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyTemplate(text string) MessageTemplate {
	return MessageTemplate{
		Name:     "order_update",
		Language: "en",
		Components: []Component{
			{Type: ComponentHeader, Text: "Order update"},
			{Type: ComponentBody, Text: text},
			{Type: ComponentButton, Text: "Track order"},
		},
	}
}

func TestExtractVariablesInOrder(t *testing.T) {
	vars := ExtractVariables(bodyTemplate("{{1}}{{2}}{{3}}"))

	require.Len(t, vars, 3)
	assert.Equal(t, "1", vars[0].Name)
	assert.Equal(t, "2", vars[1].Name)
	assert.Equal(t, "3", vars[2].Name)
	for _, v := range vars {
		assert.True(t, v.Required)
	}
}

func TestExtractVariablesNoBody(t *testing.T) {
	tmpl := MessageTemplate{
		Name:       "buttons_only",
		Components: []Component{{Type: ComponentButton, Text: "Yes"}},
	}

	assert.Empty(t, ExtractVariables(tmpl))
	assert.Equal(t, "", RenderPreview(tmpl, Bindings{"1": "x"}))
}

func TestExtractVariablesKeepsDuplicates(t *testing.T) {
	vars := ExtractVariables(bodyTemplate("Hi {{1}}, yes {{1}}!"))

	require.Len(t, vars, 2)
	assert.Equal(t, "1", vars[0].Name)
	assert.Equal(t, "1", vars[1].Name)
}

func TestExtractVariablesIgnoresMalformedTokens(t *testing.T) {
	vars := ExtractVariables(bodyTemplate("{{}} {{abc}} {{1}} {{ 2 }}"))

	require.Len(t, vars, 1)
	assert.Equal(t, "1", vars[0].Name)
}

func TestRenderPreviewSubstitution(t *testing.T) {
	tmpl := bodyTemplate("Hi {{1}}, your code is {{2}}")

	preview := RenderPreview(tmpl, Bindings{"1": "Alice"})
	assert.Equal(t, "Hi Alice, your code is [VAR2]", preview)

	preview = RenderPreview(tmpl, Bindings{"1": "Alice", "2": "1234"})
	assert.Equal(t, "Hi Alice, your code is 1234", preview)
}

func TestRenderPreviewLeavesMalformedTokens(t *testing.T) {
	tmpl := bodyTemplate("{{}} hi {{1}} {{abc}}")

	preview := RenderPreview(tmpl, Bindings{"1": "Bob"})
	assert.Equal(t, "{{}} hi Bob {{abc}}", preview)
}

func TestRenderPreviewIsIdempotent(t *testing.T) {
	tmpl := bodyTemplate("Hello {{1}}, see {{2}} at {{3}}")
	bindings := Bindings{"1": "Ana", "3": "noon"}

	first := RenderPreview(tmpl, bindings)
	second := RenderPreview(tmpl, bindings)
	assert.Equal(t, first, second)
}

func TestRenderPreviewDoesNotRecurse(t *testing.T) {
	// A bound value containing a token must not be re-scanned.
	tmpl := bodyTemplate("{{1}} and {{2}}")

	preview := RenderPreview(tmpl, Bindings{"1": "{{2}}", "2": "two"})
	assert.Equal(t, "{{2}} and two", preview)
}

func TestRenderPreviewOutOfRangeTokenStaysLiteral(t *testing.T) {
	tmpl := bodyTemplate("{{1}} {{2}} {{5}}")

	// Three variables extracted (1, 2, 5), so slots run 1..3; the {{5}}
	// token itself is outside that range and stays put.
	preview := RenderPreview(tmpl, Bindings{"1": "a", "2": "b", "5": "c"})
	assert.Equal(t, "a b {{5}}", preview)
}

func TestValidateBindings(t *testing.T) {
	vars := []Variable{
		{Name: "1", Required: true},
		{Name: "2", Required: true},
		{Name: "3", Required: true},
	}

	missing := ValidateBindings(vars, Bindings{"1": "Alice", "2": "   ", "3": ""})
	assert.Equal(t, []string{"2", "3"}, missing)

	missing = ValidateBindings(vars, Bindings{"1": "a", "2": "b", "3": "c"})
	assert.Nil(t, missing)
}

func TestCheckPlaceholders(t *testing.T) {
	assert.NoError(t, CheckPlaceholders(bodyTemplate("Hi {{1}}, code {{2}}")))
	assert.NoError(t, CheckPlaceholders(bodyTemplate("no placeholders")))

	assert.Error(t, CheckPlaceholders(bodyTemplate("{{1}} {{3}}")), "gap in indices")
	assert.Error(t, CheckPlaceholders(bodyTemplate("{{2}} {{1}}")), "reordered indices")
	assert.Error(t, CheckPlaceholders(bodyTemplate("{{1}} {{1}}")), "duplicate index")
}

func TestLanguageOrDefault(t *testing.T) {
	assert.Equal(t, "en", MessageTemplate{}.LanguageOrDefault())
	assert.Equal(t, "pt_BR", MessageTemplate{Language: "pt_BR"}.LanguageOrDefault())
}

func TestButtons(t *testing.T) {
	tmpl := MessageTemplate{
		Components: []Component{
			{Type: ComponentBody, Text: "hi"},
			{Type: ComponentButton, Text: "Yes"},
			{Type: ComponentButton, Text: "No"},
		},
	}
	assert.Equal(t, []string{"Yes", "No"}, tmpl.Buttons())
}
