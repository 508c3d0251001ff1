package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/telconova/notifier/internal/types"
)

type Notification struct {
	gorm.Model

	Recipient    string                    `gorm:"not null"`
	Subject      string
	Content      string                    `gorm:"type:text;not null"` // already rendered, no further templating
	Channel      types.NotificationChannel `gorm:"not null"`
	// No column defaults on priority/retry fields: a default tag makes GORM
	// skip zero values on INSERT, silently replacing priority 0 (most urgent)
	// or max_retries 0. The services layer applies the defaults.
	Priority     int                       `gorm:"not null;index:idx_notifications_queue"`
	Status       types.NotificationStatus  `gorm:"not null;index"`
	RetryCount   int                       `gorm:"not null"`
	MaxRetries   int                       `gorm:"not null"`
	SentAt       *time.Time
	ErrorMessage string
	AlertRuleID  *uint                     `gorm:"index"` // nil for notifications created directly via the API

	// Relationships
	History []NotificationHistory `gorm:"foreignKey:NotificationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
