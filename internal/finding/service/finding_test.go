package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/ai-video-backend/internal/finding/biz"
	"github.com/lk2023060901/ai-video-backend/internal/finding/types"
	"github.com/lk2023060901/ai-video-backend/internal/video/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSearcher struct {
	result *biz.SearchResult
	err    error
	prompt string
	sort   string
}

func (f *fakeSearcher) Search(_ context.Context, prompt, sortKey string) (*biz.SearchResult, error) {
	f.prompt, f.sort = prompt, sortKey
	return f.result, f.err
}

func newRouter(searcher Searcher, limiter gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	NewFindingService(searcher, zap.NewNop()).RegisterRoutes(r.Group("/api"), pass, limiter)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/finding/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFindingService_Search(t *testing.T) {
	desc := "집사의 하루"
	searcher := &fakeSearcher{result: &biz.SearchResult{
		OriginalPrompt: "고양이",
		IntentSummary:  "고양이 영상",
		PredictedTags:  []string{"고양이"},
		Matches: []*biz.Match{{
			Video: &models.Video{
				VideoNo: 3, Title: "고양이 브이로그", Description: &desc,
				ViewCount: 10, LikeCount: 2, DislikeCount: 1,
				CreatedAt: time.Date(2025, 11, 1, 9, 30, 0, 0, time.Local),
			},
			Tags:       []string{"고양이"},
			Score:      0.5,
			MatchLevel: biz.LevelMedium,
		}},
	}}

	w := post(newRouter(searcher, nil), `{"prompt":"고양이","sort":"views"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "고양이", searcher.prompt)
	assert.Equal(t, "views", searcher.sort)

	var body types.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "고양이 영상", body.IntentSummary)
	require.Len(t, body.Videos, 1)
	v := body.Videos[0]
	assert.Equal(t, int64(3), v.VideoNo)
	assert.Equal(t, int64(10), v.Views)
	assert.Equal(t, int64(0), v.DurationSec)
	assert.Equal(t, "2025-11-01T09:30:00", v.CreatedAt)
	assert.Equal(t, "MEDIUM", v.MatchLevel)
}

func TestFindingService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, "요청 형식이 올바르지 않습니다."},
		{"blank prompt", `{"prompt":"  "}`, biz.ErrBlankPrompt, http.StatusBadRequest, "prompt는 비어 있을 수 없습니다."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newRouter(&fakeSearcher{err: tt.err}, nil), tt.body)
			assert.Equal(t, tt.status, w.Code)

			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestFindingService_Limiter(t *testing.T) {
	searcher := &fakeSearcher{}
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }

	w := post(newRouter(searcher, deny), `{"prompt":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, searcher.prompt)
}
