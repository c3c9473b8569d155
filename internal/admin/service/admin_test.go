package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = validator.Register()
}

func TestAdminService_RequestValidation(t *testing.T) {
	r := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	NewAdminService(nil, zap.NewNop()).RegisterRoutes(r.Group("/api"), deny)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"login without username", http.MethodPost, "/api/admin/login", `{"password":"x"}`, http.StatusBadRequest},
		{"login blank username", http.MethodPost, "/api/admin/login", `{"username":"  ","password":"x"}`, http.StatusBadRequest},
		{"users guarded", http.MethodGet, "/api/admin/users", "", http.StatusForbidden},
		{"approve guarded", http.MethodPost, "/api/admin/videos/1/approve", "", http.StatusForbidden},
		{"delete guarded", http.MethodDelete, "/api/admin/videos/1", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAdminService_BadVideoNo(t *testing.T) {
	r := gin.New()
	NewAdminService(nil, zap.NewNop()).RegisterRoutes(r.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/videos/zero/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "videoNo 값이 올바르지 않습니다.", body.Message)
}
