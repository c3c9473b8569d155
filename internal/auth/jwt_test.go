package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "ai-video-backend", time.Hour)

	token, err := m.GenerateAccessToken("u1", RoleUser)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, RoleUser, claims.Role)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "ai-video-backend", time.Hour)
	token, err := m.GenerateAccessToken("admin", RoleAdmin)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", "ai-video-backend", time.Hour).VerifyAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWTManager("secret", "someone-else", time.Hour).VerifyAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("secret", "ai-video-backend", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.VerifyAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.VerifyAccessToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc", want: "abc"},
		{header: "Bearer ", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ExtractTokenFromHeader(tt.header)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAuthHeader, tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestPasswordHasher(t *testing.T) {
	h := PasswordHasher{Cost: 4}

	hash, err := h.Hash("secret-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-pw", hash)
	assert.True(t, h.Matches("secret-pw", hash))
	assert.False(t, h.Matches("other", hash))
	assert.False(t, h.Matches("secret-pw", "not-a-hash"))
}
