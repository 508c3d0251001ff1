package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/telconova/notifier/internal/types"
)

// AlertRuleAudit is an append-only record of a rule mutation. AlertRuleID is
// deliberately a plain column with no foreign key so the trail survives rule
// deletion.
type AlertRuleAudit struct {
	ID          uint              `gorm:"primarykey"`
	AlertRuleID uint              `gorm:"not null;index"`
	Action      types.AuditAction `gorm:"not null"`
	PerformedBy string            `gorm:"not null"`
	Changes     datatypes.JSON    `gorm:"type:jsonb"` // field diff, "old -> new" per changed field
	IPAddress   string
	Timestamp   time.Time         `gorm:"not null;autoCreateTime"`
}
