package models

import "gorm.io/gorm"

// AutoMigrate runs database migrations for video domain
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Video{},
		&VideoFeature{},
		&VideoReaction{},
	)
}
