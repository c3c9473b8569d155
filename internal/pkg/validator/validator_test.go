package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	UserID   string `json:"userId" binding:"required,min=4,max=20"`
	Nickname string `json:"nickname" binding:"notblank"`
	Email    string `json:"email" binding:"required,email"`
	Gender   string `json:"gender" binding:"omitempty,oneof=M F"`
}

func TestRegisterAndMessage(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())

	tests := []struct {
		name string
		in   signup
		want string
	}{
		{
			name: "short user id",
			in:   signup{UserID: "ab", Nickname: "kim", Email: "a@b.co"},
			want: "userID의 길이 또는 값이 허용 범위를 벗어났습니다.",
		},
		{
			name: "blank nickname",
			in:   signup{UserID: "abcd", Nickname: "   ", Email: "a@b.co"},
			want: "nickname은(는) 필수입니다.",
		},
		{
			name: "bad email",
			in:   signup{UserID: "abcd", Nickname: "kim", Email: "nope"},
			want: "올바른 이메일 형식이 아닙니다.",
		},
		{
			name: "bad gender",
			in:   signup{UserID: "abcd", Nickname: "kim", Email: "a@b.co", Gender: "X"},
			want: "gender은(는) M F 중 하나여야 합니다.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}

	assert.NoError(t, binding.Validator.ValidateStruct(signup{UserID: "abcd", Nickname: "kim", Email: "a@b.co", Gender: "F"}))
}

func TestMessage_NonValidationError(t *testing.T) {
	assert.Equal(t, "요청 형식이 올바르지 않습니다.", Message(errors.New("unexpected EOF")))
}

func TestIPHelpers(t *testing.T) {
	assert.True(t, IsValidIP("10.0.0.1"))
	assert.False(t, IsValidIP(""))
	assert.Equal(t, "fe80::1", NormalizeIP("fe80::1%eth0"))
	assert.Equal(t, "unknown", GetIPOrDefault("not-an-ip", "unknown"))
	assert.Equal(t, "::1", GetIPOrDefault("::1", "unknown"))
}
