package models

import (
	"time"

	"github.com/telconova/notifier/internal/types"
)

// NotificationHistory is the append-only per-notification transition log,
// one row per status change including the initial enqueue.
type NotificationHistory struct {
	ID             uint                     `gorm:"primarykey"`
	NotificationID uint                     `gorm:"not null;index"`
	Status         types.NotificationStatus `gorm:"not null"` // the status being entered
	Description    string                   `gorm:"type:text"`
	ErrorDetails   string                   `gorm:"type:text"`
	Timestamp      time.Time                `gorm:"not null;autoCreateTime"`
}
