package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/senders"
	"github.com/telconova/notifier/internal/types"
)

type CreateNotificationRequest struct {
	Recipient   string                    `json:"recipient" binding:"required"`
	Subject     string                    `json:"subject"`
	Content     string                    `json:"content" binding:"required"`
	Channel     types.NotificationChannel `json:"channel" binding:"required"`
	Priority    *int                      `json:"priority"`
	MaxRetries  *int                      `json:"max_retries"`
	AlertRuleID *uint                     `json:"alert_rule_id"`
}

type QueueStats struct {
	Sent               int64   `json:"sent"`
	Pending            int64   `json:"pending"`
	Failed             int64   `json:"failed"`
	Processing         int64   `json:"processing"`
	SuccessRatePercent float64 `json:"success_rate_percent"`
}

// CreateNotification enqueues a notification in PENDING state and writes the
// initial history row.
func CreateNotification(req CreateNotificationRequest) (*models.Notification, error) {
	if !req.Channel.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, req.Channel)
	}

	if req.AlertRuleID != nil {
		if _, err := GetRule(*req.AlertRuleID); err != nil {
			return nil, err
		}
	}

	priority := 5
	if req.Priority != nil {
		priority = *req.Priority
	}

	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = config.DefaultMaxRetries
	}
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}

	notification := models.Notification{
		Recipient:   req.Recipient,
		Subject:     req.Subject,
		Content:     req.Content,
		Channel:     req.Channel,
		Priority:    priority,
		Status:      types.StatusPending,
		MaxRetries:  maxRetries,
		AlertRuleID: req.AlertRuleID,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		return nil, err
	}

	addHistory(notification.ID, types.StatusPending, "Notification queued for delivery", "")

	log.Info().Uint("notification_id", notification.ID).Str("channel", string(notification.Channel)).
		Int("priority", notification.Priority).Msg("notification queued")

	return &notification, nil
}

// ProcessNotification runs one delivery attempt: PENDING/RETRYING ->
// PROCESSING -> SENT | RETRYING | FAILED. Sender failures never escape as
// errors; they become failure transitions. The returned error covers
// persistence problems only.
func ProcessNotification(notification *models.Notification, registry *senders.Registry) error {
	log.Debug().Uint("notification_id", notification.ID).Msg("processing notification")

	notification.Status = types.StatusProcessing

	if err := db.DB.Save(notification).Error; err != nil {
		return err
	}

	addHistory(notification.ID, types.StatusProcessing, "Delivery attempt started", "")

	sender := registry.For(notification)

	if sender == nil {
		// Fatal, non-retryable: no sender will appear without a deploy. The
		// budget is marked exhausted so the retry sweep never picks it up.
		notification.Status = types.StatusFailed
		notification.RetryCount = notification.MaxRetries
		notification.ErrorMessage = fmt.Sprintf("%s %s", ErrNoSenderAvailable.Error(), notification.Channel)

		if err := db.DB.Save(notification).Error; err != nil {
			return err
		}

		addHistory(notification.ID, types.StatusFailed,
			"Delivery aborted: no sender registered for channel "+string(notification.Channel),
			notification.ErrorMessage)

		log.Error().Uint("notification_id", notification.ID).Str("channel", string(notification.Channel)).
			Msg("no sender available, notification failed permanently")

		return nil
	}

	if sender.Send(notification) {
		now := time.Now()
		notification.Status = types.StatusSent
		notification.SentAt = &now

		if err := db.DB.Save(notification).Error; err != nil {
			return err
		}

		addHistory(notification.ID, types.StatusSent, "Notification delivered successfully", "")

		log.Info().Uint("notification_id", notification.ID).Msg("notification sent")

		return nil
	}

	return HandleFailure(notification, "sender reported delivery failure")
}

// HandleFailure applies the failure transition: bump the retry count, then
// move to RETRYING while budget remains or FAILED once it is exhausted.
func HandleFailure(notification *models.Notification, errorMessage string) error {
	// The counter never exceeds the ceiling, even when maxRetries is zero.
	if notification.RetryCount < notification.MaxRetries {
		notification.RetryCount++
	}
	notification.ErrorMessage = errorMessage

	if notification.RetryCount < notification.MaxRetries {
		notification.Status = types.StatusRetrying

		if err := db.DB.Save(notification).Error; err != nil {
			return err
		}

		addHistory(notification.ID, types.StatusRetrying,
			fmt.Sprintf("Attempt %d/%d failed, delivery will be retried", notification.RetryCount, notification.MaxRetries),
			errorMessage)

		log.Warn().Uint("notification_id", notification.ID).
			Int("retry_count", notification.RetryCount).Int("max_retries", notification.MaxRetries).
			Msg("notification delivery failed, scheduled for retry")

		return nil
	}

	notification.Status = types.StatusFailed

	if err := db.DB.Save(notification).Error; err != nil {
		return err
	}

	addHistory(notification.ID, types.StatusFailed,
		fmt.Sprintf("Delivery permanently failed after %d attempts", notification.RetryCount),
		errorMessage)

	log.Error().Uint("notification_id", notification.ID).Int("attempts", notification.RetryCount).
		Msg("notification failed permanently")

	return nil
}

func GetNotification(id uint) (*models.Notification, error) {
	var notification models.Notification

	if err := db.DB.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	return &notification, nil
}

// PendingNotifications returns the PENDING queue, most urgent first and FIFO
// within equal priority.
func PendingNotifications() ([]models.Notification, error) {
	var notifications []models.Notification

	if err := db.DB.Where("status = ?", types.StatusPending).
		Order("priority ASC, created_at ASC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

// RetryEligibleNotifications returns failure-adjacent notifications whose
// retry budget has not been exhausted.
func RetryEligibleNotifications() ([]models.Notification, error) {
	var notifications []models.Notification

	if err := db.DB.Where("status IN ? AND retry_count < max_retries",
		[]types.NotificationStatus{types.StatusFailed, types.StatusRetrying}).
		Order("priority ASC, created_at ASC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func CountByStatus(status types.NotificationStatus) (int64, error) {
	var count int64

	if err := db.DB.Model(&models.Notification{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func GetQueueStats() (QueueStats, error) {
	var stats QueueStats
	var err error

	if stats.Sent, err = CountByStatus(types.StatusSent); err != nil {
		return stats, err
	}
	if stats.Pending, err = CountByStatus(types.StatusPending); err != nil {
		return stats, err
	}
	if stats.Failed, err = CountByStatus(types.StatusFailed); err != nil {
		return stats, err
	}
	if stats.Processing, err = CountByStatus(types.StatusProcessing); err != nil {
		return stats, err
	}

	total := stats.Sent + stats.Pending + stats.Failed + stats.Processing
	if total > 0 {
		stats.SuccessRatePercent = float64(stats.Sent) / float64(total) * 100
	}

	return stats, nil
}

// FailedOrRetrying lists notifications in failure states, newest first, for
// the error-log view.
func FailedOrRetrying() ([]models.Notification, error) {
	var notifications []models.Notification

	if err := db.DB.Where("status IN ?",
		[]types.NotificationStatus{types.StatusFailed, types.StatusRetrying}).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

// PendingQueue lists the live queue (PENDING and PROCESSING) in dispatch order.
func PendingQueue() ([]models.Notification, error) {
	var notifications []models.Notification

	if err := db.DB.Where("status IN ?",
		[]types.NotificationStatus{types.StatusPending, types.StatusProcessing}).
		Order("priority ASC, created_at ASC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func NotificationHistory(notificationID uint) ([]models.NotificationHistory, error) {
	var history []models.NotificationHistory

	if err := db.DB.Where("notification_id = ?", notificationID).
		Order("timestamp ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}

	return history, nil
}

// addHistory appends one transition row. History write failures are logged,
// not propagated: the transition itself has already been persisted.
func addHistory(notificationID uint, status types.NotificationStatus, description string, errorDetails string) {
	history := models.NotificationHistory{
		NotificationID: notificationID,
		Status:         status,
		Description:    description,
		ErrorDetails:   errorDetails,
	}

	if err := db.DB.Create(&history).Error; err != nil {
		log.Error().Err(err).Uint("notification_id", notificationID).Str("status", string(status)).
			Msg("failed to record notification history")
	}
}
