package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbroadcast/internal/database"
	"wbroadcast/internal/models"
	"wbroadcast/internal/template"
)

func templateRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTemplateHandler(nil, nil)

	r := gin.New()
	r.GET("/api/templates", handler.GetTemplates)
	r.POST("/api/templates/preview", handler.PreviewTemplate)
	return r
}

func TestGetTemplatesStatusFilter(t *testing.T) {
	setupTestDB(t)
	rows := []models.Template{
		{ID: "t1", Name: "welcome", Status: "approved", Components: "[]"},
		{ID: "t2", Name: "draft_offer", Status: "pending", Components: "[]"},
	}
	require.NoError(t, database.GormDB.Create(&rows).Error)
	router := templateRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/templates?status=APPROVED", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Templates []models.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Templates, 1)
	assert.Equal(t, "welcome", resp.Templates[0].Name)
}

func TestPreviewTemplate(t *testing.T) {
	setupTestDB(t)
	row := models.Template{
		ID:         "t1",
		Name:       "welcome",
		Language:   "en",
		Status:     "approved",
		Components: `[{"type":"BODY","text":"Hi {{1}}, your code is {{2}}"},{"type":"BUTTON","text":"Shop now"}]`,
	}
	require.NoError(t, database.GormDB.Create(&row).Error)
	router := templateRouter()

	body, _ := json.Marshal(PreviewRequest{
		TemplateName: "welcome",
		Variables:    map[string]string{"1": "Alice"},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/templates/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Preview   string              `json:"preview"`
		Variables []template.Variable `json:"variables"`
		Missing   []string            `json:"missing"`
		Buttons   []string            `json:"buttons"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hi Alice, your code is [VAR2]", resp.Preview)
	require.Len(t, resp.Variables, 2)
	assert.Equal(t, []string{"2"}, resp.Missing)
	assert.Equal(t, []string{"Shop now"}, resp.Buttons)
}

func TestPreviewTemplateNotFound(t *testing.T) {
	setupTestDB(t)
	router := templateRouter()

	body, _ := json.Marshal(PreviewRequest{TemplateName: "gone"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/templates/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseTemplate(t *testing.T) {
	row := models.Template{
		Name:       "welcome",
		Language:   "en",
		Components: `[{"type":"BODY","text":"Hi {{1}}"}]`,
	}

	parsed, err := ParseTemplate(row)
	require.NoError(t, err)
	assert.Equal(t, "welcome", parsed.Name)
	require.Len(t, parsed.Components, 1)
	assert.Equal(t, "Hi {{1}}", parsed.Components[0].Text)

	_, err = ParseTemplate(models.Template{Components: "not json"})
	assert.Error(t, err)
}
