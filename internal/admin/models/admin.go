package models

import (
	"time"

	"gorm.io/gorm"
)

// 管理员状态
const (
	StatusActive = "ACTIVE"
	StatusBlock  = "BLOCK"
)

// Admin 管理员账号
type Admin struct {
	AdminNo     int64   `gorm:"primaryKey;autoIncrement"`
	AdminID     string  `gorm:"column:admin_id;size:50;not null;uniqueIndex:uk_admins_admin_id"`
	Password    string  `gorm:"size:255;not null"`
	AdminName   string  `gorm:"size:50;not null"`
	AdminRole   *string `gorm:"size:30"`
	Status      string  `gorm:"size:10;not null;default:ACTIVE"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Admin) TableName() string {
	return "admins"
}

// AutoMigrate runs database migrations for admin domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Admin{})
}
