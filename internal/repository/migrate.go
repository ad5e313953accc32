package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the engine's tables. Postgres
// deployments should additionally apply migrations/ for the
// no-overlap exclusion constraint, which GORM cannot express.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&resourceModel{},
		&blackoutModel{},
		&reservationModel{},
	)
}
