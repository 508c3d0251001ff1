package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

type CreateRuleRequest struct {
	Name           string                    `json:"name" binding:"required"`
	Description    string                    `json:"description"`
	TriggerEvent   types.EventTrigger        `json:"trigger_event" binding:"required"`
	TemplateID     uint                      `json:"template_id" binding:"required"`
	TargetAudience string                    `json:"target_audience" binding:"required"`
	Channel        types.NotificationChannel `json:"channel" binding:"required"`
	Priority       *int                      `json:"priority"`
	IsActive       *bool                     `json:"is_active"`
}

// ruleSnapshot captures the mutable rule fields tracked by the audit diff.
type ruleSnapshot struct {
	Name           string
	Description    string
	TriggerEvent   types.EventTrigger
	TemplateID     uint
	TargetAudience string
	Channel        types.NotificationChannel
	Priority       int
	IsActive       bool
}

func CreateRule(req CreateRuleRequest, actor string, ipAddress string) (*models.AlertRule, error) {
	if !req.TriggerEvent.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrigger, req.TriggerEvent)
	}

	if !req.Channel.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, req.Channel)
	}

	template, err := GetTemplate(req.TemplateID)

	if err != nil {
		return nil, err
	}

	priority := 5
	if req.Priority != nil {
		priority = *req.Priority
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := models.AlertRule{
		Name:           req.Name,
		Description:    req.Description,
		TriggerEvent:   req.TriggerEvent,
		TemplateID:     template.ID,
		TargetAudience: req.TargetAudience,
		Channel:        req.Channel,
		Priority:       priority,
		IsActive:       isActive,
		CreatedBy:      actor,
	}

	if err := db.DB.Create(&rule).Error; err != nil {
		return nil, err
	}

	rule.Template = *template

	registerAudit(rule.ID, types.AuditCreate, actor, nil, ipAddress)

	log.Info().Uint("rule_id", rule.ID).Str("name", rule.Name).Str("actor", actor).Msg("alert rule created")

	return &rule, nil
}

func UpdateRule(id uint, req CreateRuleRequest, actor string, ipAddress string) (*models.AlertRule, error) {
	if !req.TriggerEvent.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrigger, req.TriggerEvent)
	}

	if !req.Channel.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChannel, req.Channel)
	}

	rule, err := GetRule(id)

	if err != nil {
		return nil, err
	}

	before := snapshotRule(rule)

	template, err := GetTemplate(req.TemplateID)

	if err != nil {
		return nil, err
	}

	rule.Name = req.Name
	rule.Description = req.Description
	rule.TriggerEvent = req.TriggerEvent
	rule.TemplateID = template.ID
	rule.TargetAudience = req.TargetAudience
	rule.Channel = req.Channel
	rule.UpdatedBy = actor

	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := db.DB.Save(rule).Error; err != nil {
		return nil, err
	}

	rule.Template = *template

	after := snapshotRule(rule)
	registerAudit(rule.ID, types.AuditUpdate, actor, diffSnapshots(before, after), ipAddress)

	log.Info().Uint("rule_id", rule.ID).Str("actor", actor).Msg("alert rule updated")

	return rule, nil
}

// DeleteRule removes the rule row permanently. Its audit trail is retained:
// the DELETE audit row is written first and audit rows carry no foreign key
// to the rule.
func DeleteRule(id uint, actor string, ipAddress string) error {
	rule, err := GetRule(id)

	if err != nil {
		return err
	}

	registerAudit(rule.ID, types.AuditDelete, actor, nil, ipAddress)

	if err := db.DB.Unscoped().Delete(rule).Error; err != nil {
		return err
	}

	log.Info().Uint("rule_id", id).Str("actor", actor).Msg("alert rule deleted")

	return nil
}

func ActivateRule(id uint, actor string, ipAddress string) (*models.AlertRule, error) {
	return setRuleActive(id, true, types.AuditActivate, actor, ipAddress)
}

func DeactivateRule(id uint, actor string, ipAddress string) (*models.AlertRule, error) {
	return setRuleActive(id, false, types.AuditDeactivate, actor, ipAddress)
}

func setRuleActive(id uint, active bool, action types.AuditAction, actor string, ipAddress string) (*models.AlertRule, error) {
	rule, err := GetRule(id)

	if err != nil {
		return nil, err
	}

	rule.IsActive = active
	rule.UpdatedBy = actor

	if err := db.DB.Save(rule).Error; err != nil {
		return nil, err
	}

	// Activate/deactivate touch a single known field, so the audit change is a
	// fixed-format entry instead of a full snapshot diff.
	registerAudit(rule.ID, action, actor, map[string]string{
		"isActive": fmt.Sprintf("%v → %v", !active, active),
	}, ipAddress)

	log.Info().Uint("rule_id", rule.ID).Bool("is_active", active).Str("actor", actor).Msg("alert rule activation changed")

	return rule, nil
}

func GetRule(id uint) (*models.AlertRule, error) {
	var rule models.AlertRule

	if err := db.DB.Preload("Template").First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	return &rule, nil
}

func ListRules() ([]models.AlertRule, error) {
	var rules []models.AlertRule

	if err := db.DB.Preload("Template").Order("created_at DESC").Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func ActiveRules() ([]models.AlertRule, error) {
	var rules []models.AlertRule

	if err := db.DB.Preload("Template").Where("is_active = ?", true).Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func RulesByEvent(trigger types.EventTrigger) ([]models.AlertRule, error) {
	var rules []models.AlertRule

	if err := db.DB.Preload("Template").
		Where("trigger_event = ? AND is_active = ?", trigger, true).
		Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func RuleAudits(ruleID uint) ([]models.AlertRuleAudit, error) {
	var audits []models.AlertRuleAudit

	if err := db.DB.Where("alert_rule_id = ?", ruleID).
		Order("timestamp DESC, id DESC").
		Find(&audits).Error; err != nil {
		return nil, err
	}

	return audits, nil
}

func snapshotRule(rule *models.AlertRule) ruleSnapshot {
	return ruleSnapshot{
		Name:           rule.Name,
		Description:    rule.Description,
		TriggerEvent:   rule.TriggerEvent,
		TemplateID:     rule.TemplateID,
		TargetAudience: rule.TargetAudience,
		Channel:        rule.Channel,
		Priority:       rule.Priority,
		IsActive:       rule.IsActive,
	}
}

// diffSnapshots records "old → new" for every tracked field that changed.
// Fields that are equal are omitted.
func diffSnapshots(before, after ruleSnapshot) map[string]string {
	changes := make(map[string]string)

	record := func(key string, oldValue, newValue any) {
		if oldValue != newValue {
			changes[key] = fmt.Sprintf("%v → %v", oldValue, newValue)
		}
	}

	record("name", before.Name, after.Name)
	record("description", before.Description, after.Description)
	record("triggerEvent", before.TriggerEvent, after.TriggerEvent)
	record("templateId", before.TemplateID, after.TemplateID)
	record("targetAudience", before.TargetAudience, after.TargetAudience)
	record("channel", before.Channel, after.Channel)
	record("priority", before.Priority, after.Priority)
	record("isActive", before.IsActive, after.IsActive)

	return changes
}

// registerAudit appends one audit row after the rule mutation has been
// persisted. Audit write failures are logged, not propagated: the mutation
// itself already succeeded.
func registerAudit(ruleID uint, action types.AuditAction, actor string, changes map[string]string, ipAddress string) {
	audit := models.AlertRuleAudit{
		AlertRuleID: ruleID,
		Action:      action,
		PerformedBy: actor,
		IPAddress:   ipAddress,
	}

	if len(changes) > 0 {
		payload, err := json.Marshal(changes)
		if err != nil {
			log.Error().Err(err).Uint("rule_id", ruleID).Msg("failed to serialize audit changes")
		} else {
			audit.Changes = datatypes.JSON(payload)
		}
	}

	if err := db.DB.Create(&audit).Error; err != nil {
		log.Error().Err(err).Uint("rule_id", ruleID).Str("action", string(action)).Msg("failed to record rule audit")
	}
}
