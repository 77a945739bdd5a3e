package db

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is an append-only audit row for room lifecycle changes. Rows are never
// read back into live rooms.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    string         `gorm:"size:64;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

// RecordEvent appends one audit row.
func RecordEvent(conn *gorm.DB, roomID, eventType string, payload any) error {
	if conn == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.Create(&Event{
		RoomID:    roomID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}).Error
}
