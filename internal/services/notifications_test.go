package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/senders"
	"github.com/telconova/notifier/internal/types"
)

// stubSender returns scripted results for consecutive Send calls; the last
// result repeats once the script is exhausted.
type stubSender struct {
	channel types.NotificationChannel
	results []bool
	calls   int
}

func (s *stubSender) CanSend(n *models.Notification) bool {
	return n.Channel == s.channel
}

func (s *stubSender) Send(n *models.Notification) bool {
	index := s.calls
	if index >= len(s.results) {
		index = len(s.results) - 1
	}
	s.calls++
	return s.results[index]
}

func registryWith(channel types.NotificationChannel, results ...bool) (*senders.Registry, *stubSender) {
	sender := &stubSender{channel: channel, results: results}
	registry := senders.NewRegistry()
	registry.Register(channel, sender)
	return registry, sender
}

func defaultNotificationRequest() CreateNotificationRequest {
	return CreateNotificationRequest{
		Recipient: "ops@example.com",
		Subject:   "Ticket created",
		Content:   "Ticket TK-001 was created",
		Channel:   types.ChannelEmail,
	}
}

func historyStatuses(t *testing.T, notificationID uint) []types.NotificationStatus {
	t.Helper()

	history, err := NotificationHistory(notificationID)
	require.NoError(t, err)

	statuses := make([]types.NotificationStatus, 0, len(history))
	for _, row := range history {
		statuses = append(statuses, row.Status)
	}
	return statuses
}

func TestCreateNotificationDefaults(t *testing.T) {
	setupTestDB(t)

	notification, err := CreateNotification(defaultNotificationRequest())
	require.NoError(t, err)

	assert.Equal(t, types.StatusPending, notification.Status)
	assert.Equal(t, 0, notification.RetryCount)
	assert.Equal(t, 3, notification.MaxRetries)
	assert.Equal(t, 5, notification.Priority)
	assert.Nil(t, notification.SentAt)
	assert.Nil(t, notification.AlertRuleID)

	assert.Equal(t, []types.NotificationStatus{types.StatusPending}, historyStatuses(t, notification.ID))
}

func TestCreateNotificationPersistsExplicitZeroValues(t *testing.T) {
	setupTestDB(t)

	zero := 0
	req := defaultNotificationRequest()
	req.Priority = &zero
	req.MaxRetries = &zero

	notification, err := CreateNotification(req)
	require.NoError(t, err)

	// Priority 0 is the most urgent value and max_retries 0 means no retry
	// budget; neither may be replaced by a column default on INSERT.
	reloaded, err := GetNotification(notification.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Priority)
	assert.Equal(t, 0, reloaded.MaxRetries)
}

func TestCreateNotificationRejectsUnknownChannel(t *testing.T) {
	setupTestDB(t)

	req := defaultNotificationRequest()
	req.Channel = "CARRIER_PIGEON"

	_, err := CreateNotification(req)
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestCreateNotificationRejectsMissingRule(t *testing.T) {
	setupTestDB(t)

	ruleID := uint(42)
	req := defaultNotificationRequest()
	req.AlertRuleID = &ruleID

	_, err := CreateNotification(req)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestProcessNotificationFirstAttemptSuccess(t *testing.T) {
	setupTestDB(t)
	registry, sender := registryWith(types.ChannelEmail, true)

	notification, err := CreateNotification(defaultNotificationRequest())
	require.NoError(t, err)

	require.NoError(t, ProcessNotification(notification, registry))

	reloaded, err := GetNotification(notification.ID)
	require.NoError(t, err)

	assert.Equal(t, types.StatusSent, reloaded.Status)
	assert.NotNil(t, reloaded.SentAt)
	assert.Equal(t, 0, reloaded.RetryCount)
	assert.Equal(t, 1, sender.calls)

	assert.Equal(t, []types.NotificationStatus{
		types.StatusPending,
		types.StatusProcessing,
		types.StatusSent,
	}, historyStatuses(t, notification.ID))
}

func TestProcessNotificationExhaustsRetriesAndFails(t *testing.T) {
	setupTestDB(t)
	registry, sender := registryWith(types.ChannelEmail, false)

	notification, err := CreateNotification(defaultNotificationRequest())
	require.NoError(t, err)
	require.Equal(t, 3, notification.MaxRetries)

	// Three delivery attempts: queue pass, then two retry sweeps.
	for i := 0; i < 3; i++ {
		require.NoError(t, ProcessNotification(notification, registry))
		assert.LessOrEqual(t, notification.RetryCount, notification.MaxRetries)
	}

	reloaded, err := GetNotification(notification.ID)
	require.NoError(t, err)

	assert.Equal(t, types.StatusFailed, reloaded.Status)
	assert.Equal(t, 3, reloaded.RetryCount)
	assert.Nil(t, reloaded.SentAt)
	assert.Equal(t, "sender reported delivery failure", reloaded.ErrorMessage)
	assert.Equal(t, 3, sender.calls)

	assert.Equal(t, []types.NotificationStatus{
		types.StatusPending,
		types.StatusProcessing,
		types.StatusRetrying,
		types.StatusProcessing,
		types.StatusRetrying,
		types.StatusProcessing,
		types.StatusFailed,
	}, historyStatuses(t, notification.ID))

	// Terminal: the budget is exhausted, so the retry sweep ignores it.
	eligible, err := RetryEligibleNotifications()
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestProcessNotificationNoSenderIsTerminal(t *testing.T) {
	setupTestDB(t)
	registry := senders.NewRegistry()

	req := defaultNotificationRequest()
	req.Channel = types.ChannelWhatsApp

	notification, err := CreateNotification(req)
	require.NoError(t, err)

	require.NoError(t, ProcessNotification(notification, registry))

	reloaded, err := GetNotification(notification.ID)
	require.NoError(t, err)

	assert.Equal(t, types.StatusFailed, reloaded.Status)
	assert.Equal(t, reloaded.MaxRetries, reloaded.RetryCount)
	assert.Contains(t, reloaded.ErrorMessage, "no sender available")

	// Never retried: no sender will appear without a deploy.
	eligible, err := RetryEligibleNotifications()
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestPendingNotificationsOrdering(t *testing.T) {
	setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	var ids []uint

	for i, priority := range []int{5, 1, 1, 3} {
		notification := models.Notification{
			Recipient:  "ops@example.com",
			Content:    "ordered",
			Channel:    types.ChannelEmail,
			Priority:   priority,
			Status:     types.StatusPending,
			MaxRetries: 3,
		}
		notification.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.DB.Create(&notification).Error)
		ids = append(ids, notification.ID)
	}

	pending, err := PendingNotifications()
	require.NoError(t, err)
	require.Len(t, pending, 4)

	// [1 (earlier), 1 (later), 3, 5]
	assert.Equal(t, []uint{ids[1], ids[2], ids[3], ids[0]}, []uint{
		pending[0].ID, pending[1].ID, pending[2].ID, pending[3].ID,
	})
}

func TestRetryEligibleNotifications(t *testing.T) {
	setupTestDB(t)

	retrying := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusRetrying, RetryCount: 1, MaxRetries: 3,
	}
	exhausted := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusFailed, RetryCount: 3, MaxRetries: 3,
	}
	pending := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusPending, MaxRetries: 3,
	}

	require.NoError(t, db.DB.Create(&retrying).Error)
	require.NoError(t, db.DB.Create(&exhausted).Error)
	require.NoError(t, db.DB.Create(&pending).Error)

	eligible, err := RetryEligibleNotifications()
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, retrying.ID, eligible[0].ID)
}

func TestQueueStatsSuccessRate(t *testing.T) {
	setupTestDB(t)

	seed := func(status types.NotificationStatus, count int) {
		for i := 0; i < count; i++ {
			notification := models.Notification{
				Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
				Priority: 5, Status: status, MaxRetries: 3,
			}
			require.NoError(t, db.DB.Create(&notification).Error)
		}
	}

	seed(types.StatusSent, 2)
	seed(types.StatusPending, 3)
	seed(types.StatusFailed, 1)

	stats, err := GetQueueStats()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Sent)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Processing)
	assert.InDelta(t, 100.0*2.0/6.0, stats.SuccessRatePercent, 0.0001)
}

func TestQueueStatsEmpty(t *testing.T) {
	setupTestDB(t)

	stats, err := GetQueueStats()
	require.NoError(t, err)
	assert.Zero(t, stats.SuccessRatePercent)
}

func TestFailedOrRetryingNewestFirst(t *testing.T) {
	setupTestDB(t)

	base := time.Now().Add(-time.Hour)

	older := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusFailed, RetryCount: 3, MaxRetries: 3,
	}
	older.CreatedAt = base
	require.NoError(t, db.DB.Create(&older).Error)

	newer := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusRetrying, RetryCount: 1, MaxRetries: 3,
	}
	newer.CreatedAt = base.Add(time.Minute)
	require.NoError(t, db.DB.Create(&newer).Error)

	sent := models.Notification{
		Recipient: "ops@example.com", Content: "x", Channel: types.ChannelEmail,
		Priority: 5, Status: types.StatusSent, MaxRetries: 3,
	}
	require.NoError(t, db.DB.Create(&sent).Error)

	failures, err := FailedOrRetrying()
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, newer.ID, failures[0].ID)
	assert.Equal(t, older.ID, failures[1].ID)
}
