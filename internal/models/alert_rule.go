package models

import (
	"gorm.io/gorm"

	"github.com/telconova/notifier/internal/types"
)

type AlertRule struct {
	gorm.Model

	Name           string                    `gorm:"not null"`
	Description    string
	TriggerEvent   types.EventTrigger        `gorm:"not null;index"`
	TemplateID     uint                      `gorm:"not null;index"`
	TargetAudience string                    `gorm:"not null"` // serialized audience descriptor, e.g. {"role":"admin"}
	Channel        types.NotificationChannel `gorm:"not null"`
	// No column defaults here: GORM omits zero-valued fields from the INSERT
	// when a default tag is present, which would turn an explicit false/0 into
	// the default. Defaulting happens in the services layer instead.
	Priority       int                       `gorm:"not null"` // lower = more urgent
	IsActive       bool                      `gorm:"not null"`
	CreatedBy      string                    `gorm:"not null"`
	UpdatedBy      string

	// Relationships
	Template      MessageTemplate `gorm:"foreignKey:TemplateID;constraint:OnUpdate:Cascade,OnDelete:RESTRICT"`
	Notifications []Notification  `gorm:"foreignKey:AlertRuleID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
