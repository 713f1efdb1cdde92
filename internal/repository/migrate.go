package repository

import "gorm.io/gorm"

// Migrate creates or updates every table this package owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&venueModel{},
		&sportModel{},
		&courtModel{},
		&pricingRuleModel{},
		&timeSlotModel{},
		&bookingModel{},
		&deviceTokenModel{},
		&notificationModel{},
	)
}
