package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderNotice(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, http.StatusForbidden, "pages/notice.html", TemplateData{
		Title: "Access denied",
		Lang:  "en",
		Data:  Notice{Heading: "Access denied", Message: "<nope>"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "<h1>Access denied</h1>")
	assert.Contains(t, rr.Body.String(), "&lt;nope&gt;")
	assert.NotContains(t, rr.Body.String(), "notice__spinner")
}

func TestRenderNilEngine(t *testing.T) {
	var engine *Engine
	assert.Error(t, engine.Render(httptest.NewRecorder(), http.StatusOK, "pages/notice.html", TemplateData{}))
}
