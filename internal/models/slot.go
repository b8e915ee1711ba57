package models

import (
	"time"

	"gorm.io/datatypes"
)

// SlotEntry is one key of a durable slot namespace when the slot is backed by
// a relational database.
type SlotEntry struct {
	Namespace string         `gorm:"type:varchar(128);primaryKey" json:"namespace"`
	Key       string         `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
}

// TableName pins the table name used by migrations and the purge task.
func (SlotEntry) TableName() string { return "slot_entries" }
