package models

import "gorm.io/gorm"

// AutoMigrate runs database migrations for user domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&EmailVerification{},
	)
}
