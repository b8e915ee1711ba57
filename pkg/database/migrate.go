package database

import (
	"gorm.io/gorm"

	"github.com/sponsorship-studio/engine/internal/models"
)

// registerModels returns all models that need migration.
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.SlotEntry{},
	}
}

// Migrate creates or updates the schema and applies the indexes AutoMigrate
// cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	for _, m := range []func(*gorm.DB) error{addSessionSlotIndex} {
		if err := m(db); err != nil {
			return err
		}
	}
	return nil
}

// addSessionSlotIndex speeds up the session purge scan.
func addSessionSlotIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_slot_entries_session_updated
		ON slot_entries(updated_at)
		WHERE namespace LIKE 'session:%'
	`).Error
}
