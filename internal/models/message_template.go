package models

import "gorm.io/gorm"

// MessageTemplate holds reusable notification content with {placeholder}
// tokens that are substituted from the event payload at render time.
type MessageTemplate struct {
	gorm.Model

	Name    string `gorm:"uniqueIndex;not null"`
	Content string `gorm:"type:text;not null"`
}
