package types

import (
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	"github.com/lk2023060901/ai-video-backend/internal/user/models"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	UserID       string  `json:"userId" binding:"required,notblank,min=4,max=20"`
	Password     string  `json:"password" binding:"required,notblank,min=6,max=100"`
	Nickname     string  `json:"nickname" binding:"required,notblank,min=2,max=20"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=M F"`
	Age          *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Email        string  `json:"email" binding:"required,notblank,email"`
	ProfileImage *string `json:"profileImage"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	UserID   string `json:"userId" binding:"required,notblank"`
	Password string `json:"password" binding:"required,notblank"`
}

// EmailCodeSendRequest 发送验证码
type EmailCodeSendRequest struct {
	Email string `json:"email" binding:"required,notblank,email"`
}

// EmailCodeVerifyRequest 校验验证码
type EmailCodeVerifyRequest struct {
	Email string `json:"email" binding:"required,notblank,email"`
	Code  string `json:"code" binding:"required,notblank"`
}

// NicknameUpdateRequest 修改昵称
type NicknameUpdateRequest struct {
	Nickname string `json:"nickname" binding:"required,notblank,min=2,max=20"`
}

// PasswordChangeRequest 修改密码
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required,notblank"`
	NewPassword     string `json:"newPassword" binding:"required,notblank,min=6,max=100"`
}

// ProfileImageUpdateRequest 修改头像配色
type ProfileImageUpdateRequest struct {
	ProfileImage string `json:"profileImage" binding:"required,notblank"`
}

// UserResponse 用户信息
type UserResponse struct {
	UserNo       int64   `json:"userNo"`
	UserID       string  `json:"userId"`
	Nickname     string  `json:"nickname"`
	Gender       *string `json:"gender"`
	Age          *int    `json:"age"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
	TokenCount   int     `json:"tokenCount"`
	CreatedAt    string  `json:"createdAt"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// DuplicateCheckResponse 重复检查结果
type DuplicateCheckResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// NewDuplicateCheckResponse 按字段名生成提示，例如 "사용 가능한 아이디입니다."
func NewDuplicateCheckResponse(available bool, field string) *DuplicateCheckResponse {
	if available {
		return &DuplicateCheckResponse{Available: true, Message: "사용 가능한 " + field + "입니다."}
	}
	return &DuplicateCheckResponse{Available: false, Message: "이미 사용 중인 " + field + "입니다."}
}

// FromUser 转换为响应
func FromUser(u *models.User) *UserResponse {
	return &UserResponse{
		UserNo:       u.UserNo,
		UserID:       u.UserID,
		Nickname:     u.Nickname,
		Gender:       u.Gender,
		Age:          u.Age,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		TokenCount:   u.TokenCount,
		CreatedAt:    response.FormatTime(u.CreatedAt),
	}
}
