package service

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter 只覆盖在进入用例之前就返回的分支
func newTestRouter() *gin.Engine {
	s := NewVideoService(nil, nil, zap.NewNop())
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	s.RegisterRoutes(r.Group("/api"), pass, pass)
	return r
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Code, body.Status)
	return body.Message
}

func TestVideoService_RequestValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"bad video no", http.MethodGet, "/api/videos/abc/stream", "", http.StatusBadRequest, "videoNo 값이 올바르지 않습니다."},
		{"negative video no", http.MethodPost, "/api/videos/-1/view", "", http.StatusBadRequest, "videoNo 값이 올바르지 않습니다."},
		{"auto tags without video no", http.MethodPost, "/api/videos/features/auto-tags", `{"mainTag":{"name":"game","score":0.9}}`, http.StatusBadRequest, "videoNo는 필수입니다."},
		{"auto tags malformed", http.MethodPost, "/api/videos/features/auto-tags", `{`, http.StatusBadRequest, "요청 형식이 올바르지 않습니다."},
		{"my videos without login", http.MethodGet, "/api/videos/my", "", http.StatusUnauthorized, "인증이 필요합니다."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeMessage(t, w))
		})
	}
}

func TestVideoService_UploadValidation(t *testing.T) {
	router := newTestRouter()

	build := func(title string, withFile bool) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("title", title)
		if withFile {
			fw, _ := mw.CreateFormFile("file", "cat.mp4")
			_, _ = fw.Write([]byte("data"))
		}
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/videos", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, build("  ", true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title은(는) 필수입니다.", decodeMessage(t, w))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, build("cat", false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file은(는) 필수입니다.", decodeMessage(t, w))
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Nil(t, splitTags("  "))
	assert.Equal(t, []string{"cat", "dog"}, splitTags(" cat, ,dog,"))
}
