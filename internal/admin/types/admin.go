package types

import (
	"github.com/lk2023060901/ai-video-backend/internal/admin/biz"
	"github.com/lk2023060901/ai-video-backend/internal/pkg/response"
	usermodels "github.com/lk2023060901/ai-video-backend/internal/user/models"
)

// UserStatusActive 会员暂无停用状态
const UserStatusActive = "ACTIVE"

type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	AdminID   string `json:"adminId"`
	AdminName string `json:"adminName"`
	Role      string `json:"role"`
}

func FromLogin(r *biz.LoginResult) *LoginResponse {
	return &LoginResponse{
		Token:     r.Token,
		AdminID:   r.Admin.AdminID,
		AdminName: r.Admin.AdminName,
		Role:      r.Role,
	}
}

type UserSummary struct {
	UserNo     int64  `json:"userNo"`
	UserID     string `json:"userId"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	TokenCount int    `json:"tokenCount"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

func FromUsers(users []*usermodels.User) []*UserSummary {
	out := make([]*UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, &UserSummary{
			UserNo:     u.UserNo,
			UserID:     u.UserID,
			Nickname:   u.Nickname,
			Email:      u.Email,
			TokenCount: u.TokenCount,
			Status:     UserStatusActive,
			CreatedAt:  response.FormatTime(u.CreatedAt),
		})
	}
	return out
}

// BlockedVideo createdAt 取上传时间
type BlockedVideo struct {
	VideoNo          int64   `json:"videoNo"`
	Title            string  `json:"title"`
	UploaderNickname *string `json:"uploaderNickname"`
	UploaderID       *string `json:"uploaderId"`
	ViewCount        int64   `json:"viewCount"`
	CreatedAt        string  `json:"createdAt"`
}

func FromBlocked(items []*biz.BlockedVideo) []*BlockedVideo {
	out := make([]*BlockedVideo, 0, len(items))
	for _, item := range items {
		dto := &BlockedVideo{
			VideoNo:   item.Video.VideoNo,
			Title:     item.Video.Title,
			ViewCount: item.Video.ViewCount,
			CreatedAt: response.FormatTime(item.Video.UploadDate),
		}
		if item.Uploader != nil {
			dto.UploaderNickname = &item.Uploader.Nickname
			dto.UploaderID = &item.Uploader.UserID
		}
		out = append(out, dto)
	}
	return out
}
