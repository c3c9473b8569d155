package models

import "time"

// InitialTokenCount 新注册用户的初始 token 数
const InitialTokenCount = 5

// User 会员
type User struct {
	UserNo       int64   `gorm:"primaryKey;autoIncrement"`
	UserID       string  `gorm:"column:user_id;size:20;not null;uniqueIndex:uk_users_user_id"`
	Password     string  `gorm:"size:255;not null"`
	Nickname     string  `gorm:"size:20;not null;uniqueIndex:uk_users_nickname"`
	Email        string  `gorm:"size:255;not null;uniqueIndex:uk_users_email"`
	Gender       *string `gorm:"type:char(1)"`
	Age          *int
	ProfileImage *string `gorm:"size:50"`
	TokenCount   int     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// EmailVerification 邮箱验证码记录，每次发送追加一行，以最新一行为准
type EmailVerification struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Email      string `gorm:"size:255;not null;index:idx_email_verification_email_created,priority:1"`
	CodeHash   string `gorm:"size:255;not null"`
	ExpiresAt  time.Time
	Attempts   int `gorm:"not null;default:0"`
	VerifiedAt *time.Time
	CreatedAt  time.Time `gorm:"index:idx_email_verification_email_created,priority:2"`
}

func (EmailVerification) TableName() string {
	return "email_verification"
}

// IsVerified 是否已完成验证
func (e *EmailVerification) IsVerified() bool {
	return e.VerifiedAt != nil
}
