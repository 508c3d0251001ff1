package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/types"
	"github.com/telconova/notifier/internal/utils"
)

type NotificationView struct {
	ID           uint                      `json:"id"`
	Recipient    string                    `json:"recipient"`
	Subject      string                    `json:"subject"`
	Content      string                    `json:"content"`
	Channel      types.NotificationChannel `json:"channel"`
	Priority     int                       `json:"priority"`
	Status       types.NotificationStatus  `json:"status"`
	RetryCount   int                       `json:"retry_count"`
	MaxRetries   int                       `json:"max_retries"`
	CreatedAt    time.Time                 `json:"created_at"`
	SentAt       *time.Time                `json:"sent_at"`
	ErrorMessage string                    `json:"error_message,omitempty"`
	AlertRuleID  *uint                     `json:"alert_rule_id,omitempty"`
}

type HistoryView struct {
	ID           uint                     `json:"id"`
	Status       types.NotificationStatus `json:"status"`
	Description  string                   `json:"description"`
	ErrorDetails string                   `json:"error_details,omitempty"`
	Timestamp    time.Time                `json:"timestamp"`
}

func CreateNotification(ctx *gin.Context) {
	var req services.CreateNotificationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notification, err := services.CreateNotification(req)

	if err != nil {
		switch {
		case errors.Is(err, services.ErrRuleNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidChannel):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, buildNotificationView(notification))
}

func GetQueueStats(ctx *gin.Context) {
	stats, err := services.GetQueueStats()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute queue statistics"})
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// GetErrorLogs lists failed and retrying notifications, newest first.
func GetErrorLogs(ctx *gin.Context) {
	notifications, err := services.FailedOrRetrying()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve error logs"})
		return
	}

	ctx.JSON(http.StatusOK, buildNotificationViews(notifications))
}

// GetPendingQueue lists the live queue in dispatch order.
func GetPendingQueue(ctx *gin.Context) {
	notifications, err := services.PendingQueue()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve queue"})
		return
	}

	ctx.JSON(http.StatusOK, buildNotificationViews(notifications))
}

func GetNotificationHistory(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "notification_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := services.GetNotification(id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}

	history, err := services.NotificationHistory(id)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification history"})
		return
	}

	views := make([]HistoryView, 0, len(history))
	for _, row := range history {
		views = append(views, HistoryView{
			ID:           row.ID,
			Status:       row.Status,
			Description:  row.Description,
			ErrorDetails: row.ErrorDetails,
			Timestamp:    row.Timestamp,
		})
	}

	ctx.JSON(http.StatusOK, views)
}

func buildNotificationView(notification *models.Notification) NotificationView {
	return NotificationView{
		ID:           notification.ID,
		Recipient:    notification.Recipient,
		Subject:      notification.Subject,
		Content:      notification.Content,
		Channel:      notification.Channel,
		Priority:     notification.Priority,
		Status:       notification.Status,
		RetryCount:   notification.RetryCount,
		MaxRetries:   notification.MaxRetries,
		CreatedAt:    notification.CreatedAt,
		SentAt:       notification.SentAt,
		ErrorMessage: notification.ErrorMessage,
		AlertRuleID:  notification.AlertRuleID,
	}
}

func buildNotificationViews(notifications []models.Notification) []NotificationView {
	views := make([]NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, buildNotificationView(&notifications[i]))
	}
	return views
}
