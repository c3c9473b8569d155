package oauth2

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshTokenProvider_Validation(t *testing.T) {
	_, err := NewRefreshTokenProvider(nil)
	assert.Error(t, err)

	_, err = NewRefreshTokenProvider(&Config{ClientID: "id"})
	assert.Error(t, err)

	_, err = NewRefreshTokenProvider(&Config{ClientID: "id", ClientSecret: "secret"})
	assert.Error(t, err)
}

func TestRefreshTokenProvider_CachesToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "r-token", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"a-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	p, err := NewRefreshTokenProvider(&Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "r-token",
		TokenURL:     srv.URL,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		token, err := p.GetAccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a-token", token)
	}
	assert.Equal(t, int32(1), calls.Load())
}
