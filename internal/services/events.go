package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

// ProcessEvent fans a domain event out to every active rule subscribed to its
// trigger. Rules are processed independently: a failure in one rule is logged
// and never prevents the remaining rules from producing their notifications.
func ProcessEvent(trigger types.EventTrigger, payload map[string]any) {
	eventID := uuid.NewString()

	rules, err := RulesByEvent(trigger)

	if err != nil {
		log.Error().Err(err).Str("event_id", eventID).Str("trigger", string(trigger)).
			Msg("failed to load rules for event")
		return
	}

	if len(rules) == 0 {
		log.Debug().Str("event_id", eventID).Str("trigger", string(trigger)).Msg("no active rules for event")
		return
	}

	log.Info().Str("event_id", eventID).Str("trigger", string(trigger)).Int("rules", len(rules)).
		Msg("processing event")

	for _, rule := range rules {
		if err := processRule(rule, payload); err != nil {
			log.Error().Err(err).Str("event_id", eventID).Uint("rule_id", rule.ID).
				Msg("rule processing failed, continuing with remaining rules")
		}
	}
}

func processRule(rule models.AlertRule, payload map[string]any) error {
	if rule.Template.ID == 0 {
		return fmt.Errorf("rule %d references missing template %d", rule.ID, rule.TemplateID)
	}

	recipient, err := ResolveRecipient(rule.TargetAudience)

	if err != nil {
		return fmt.Errorf("resolving audience for rule %d: %w", rule.ID, err)
	}

	content := RenderTemplate(rule.Template.Content, payload)

	_, err = CreateNotification(CreateNotificationRequest{
		Recipient:   recipient,
		Subject:     rule.Name,
		Content:     content,
		Channel:     rule.Channel,
		Priority:    &rule.Priority,
		AlertRuleID: &rule.ID,
	})

	if err != nil {
		return fmt.Errorf("creating notification for rule %d: %w", rule.ID, err)
	}

	return nil
}

// RenderTemplate substitutes every {key} token with the matching payload
// value. Tokens without a payload entry are left untouched.
func RenderTemplate(content string, payload map[string]any) string {
	for key, value := range payload {
		content = strings.ReplaceAll(content, "{"+key+"}", fmt.Sprint(value))
	}

	return content
}

// ResolveRecipient extracts a concrete recipient from a rule's serialized
// audience descriptor, e.g. {"role":"admin"} or {"recipient":"ops@example.com"}.
func ResolveRecipient(targetAudience string) (string, error) {
	var descriptor map[string]any

	if err := json.Unmarshal([]byte(targetAudience), &descriptor); err != nil {
		return "", fmt.Errorf("invalid audience descriptor: %w", err)
	}

	for _, key := range []string{"recipient", "role"} {
		if value, exists := descriptor[key]; exists {
			recipient := fmt.Sprint(value)
			if recipient != "" {
				return recipient, nil
			}
		}
	}

	return "", fmt.Errorf("audience descriptor has no recipient or role")
}
