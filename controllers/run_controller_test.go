package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applyai/services"
)

func runTestRouter(t *testing.T, profilesRoot string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	runs := services.NewRunsService(services.RunsDeps{})
	resumes := services.NewResumeService(profilesRoot)
	controller := NewRunController(runs, resumes)

	r := gin.New()
	r.POST("/api/runs", controller.StartRun)
	r.GET("/api/runs/:id", controller.GetRun)
	r.GET("/api/profiles", controller.ListProfiles)
	return r
}

func TestStartRunRejectsInvalidJSON(t *testing.T) {
	r := runTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartRunRequiresJobTarget(t *testing.T) {
	r := runTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"profile": "alex"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "job_url")
}

func TestGetRunNotFound(t *testing.T) {
	r := runTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/does-not-exist", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProfiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alex"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "jordan"), 0o755))

	r := runTestRouter(t, root)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alex")
	assert.Contains(t, w.Body.String(), "jordan")
}
