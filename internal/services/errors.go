package services

import "errors"

var (
	ErrRuleNotFound         = errors.New("alert rule not found")
	ErrTemplateNotFound     = errors.New("message template not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoSenderAvailable    = errors.New("no sender available for channel")
	ErrInvalidTrigger       = errors.New("unknown event trigger")
	ErrInvalidChannel       = errors.New("unknown notification channel")
)
