package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

// setupTestDB swaps the global database for a fresh in-memory sqlite instance.
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.MessageTemplate{},
		&models.AlertRule{},
		&models.AlertRuleAudit{},
		&models.Notification{},
		&models.NotificationHistory{},
	))

	previous := db.DB
	db.DB = database
	t.Cleanup(func() {
		db.DB = previous
		sqlDB.Close()
	})
}

func createTestTemplate(t *testing.T, name, content string) *models.MessageTemplate {
	t.Helper()

	template, err := CreateTemplate(CreateTemplateRequest{Name: name, Content: content})
	require.NoError(t, err)

	return template
}

func createTestRule(t *testing.T, req CreateRuleRequest) *models.AlertRule {
	t.Helper()

	rule, err := CreateRule(req, "tester", "127.0.0.1")
	require.NoError(t, err)

	return rule
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func defaultRuleRequest(templateID uint) CreateRuleRequest {
	return CreateRuleRequest{
		Name:           "Ticket created alert",
		Description:    "Notify support leads",
		TriggerEvent:   types.TicketCreated,
		TemplateID:     templateID,
		TargetAudience: `{"role":"admin"}`,
		Channel:        types.ChannelEmail,
		Priority:       intPtr(5),
		IsActive:       boolPtr(true),
	}
}
