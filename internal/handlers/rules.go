package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/types"
	"github.com/telconova/notifier/internal/utils"
)

type RuleView struct {
	ID             uint                      `json:"id"`
	Name           string                    `json:"name"`
	Description    string                    `json:"description"`
	TriggerEvent   types.EventTrigger        `json:"trigger_event"`
	TemplateID     uint                      `json:"template_id"`
	TemplateName   string                    `json:"template_name"`
	TargetAudience string                    `json:"target_audience"`
	Channel        types.NotificationChannel `json:"channel"`
	Priority       int                       `json:"priority"`
	IsActive       bool                      `json:"is_active"`
	CreatedBy      string                    `json:"created_by"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedBy      string                    `json:"updated_by,omitempty"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

type RuleAuditView struct {
	ID          uint              `json:"id"`
	AlertRuleID uint              `json:"alert_rule_id"`
	Action      types.AuditAction `json:"action"`
	PerformedBy string            `json:"performed_by"`
	Changes     map[string]string `json:"changes,omitempty"`
	IPAddress   string            `json:"ip_address,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

func CreateRule(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not authenticated"})
		return
	}

	var req services.CreateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := services.CreateRule(req, actor, ctx.ClientIP())

	if err != nil {
		respondRuleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, buildRuleView(rule))
}

func UpdateRule(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not authenticated"})
		return
	}

	id, err := utils.ParseIDParam(ctx, "rule_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req services.CreateRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := services.UpdateRule(id, req, actor, ctx.ClientIP())

	if err != nil {
		respondRuleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, buildRuleView(rule))
}

func DeleteRule(ctx *gin.Context) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not authenticated"})
		return
	}

	id, err := utils.ParseIDParam(ctx, "rule_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteRule(id, actor, ctx.ClientIP()); err != nil {
		respondRuleError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ActivateRule(ctx *gin.Context) {
	setRuleActive(ctx, services.ActivateRule)
}

func DeactivateRule(ctx *gin.Context) {
	setRuleActive(ctx, services.DeactivateRule)
}

func setRuleActive(ctx *gin.Context, operation func(uint, string, string) (*models.AlertRule, error)) {
	actor, err := utils.GetCurrentActor(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Actor not authenticated"})
		return
	}

	id, err := utils.ParseIDParam(ctx, "rule_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := operation(id, actor, ctx.ClientIP())

	if err != nil {
		respondRuleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, buildRuleView(rule))
}

func ListRules(ctx *gin.Context) {
	rules, err := services.ListRules()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rules"})
		return
	}

	views := make([]RuleView, 0, len(rules))
	for i := range rules {
		views = append(views, buildRuleView(&rules[i]))
	}

	ctx.JSON(http.StatusOK, views)
}

func GetRuleAudits(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "rule_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audits, err := services.RuleAudits(id)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule audits"})
		return
	}

	views := make([]RuleAuditView, 0, len(audits))
	for _, audit := range audits {
		views = append(views, buildRuleAuditView(audit))
	}

	ctx.JSON(http.StatusOK, views)
}

func respondRuleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRuleNotFound), errors.Is(err, services.ErrTemplateNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTrigger), errors.Is(err, services.ErrInvalidChannel):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process rule request"})
	}
}

func buildRuleView(rule *models.AlertRule) RuleView {
	return RuleView{
		ID:             rule.ID,
		Name:           rule.Name,
		Description:    rule.Description,
		TriggerEvent:   rule.TriggerEvent,
		TemplateID:     rule.TemplateID,
		TemplateName:   rule.Template.Name,
		TargetAudience: rule.TargetAudience,
		Channel:        rule.Channel,
		Priority:       rule.Priority,
		IsActive:       rule.IsActive,
		CreatedBy:      rule.CreatedBy,
		CreatedAt:      rule.CreatedAt,
		UpdatedBy:      rule.UpdatedBy,
		UpdatedAt:      rule.UpdatedAt,
	}
}

func buildRuleAuditView(audit models.AlertRuleAudit) RuleAuditView {
	view := RuleAuditView{
		ID:          audit.ID,
		AlertRuleID: audit.AlertRuleID,
		Action:      audit.Action,
		PerformedBy: audit.PerformedBy,
		IPAddress:   audit.IPAddress,
		Timestamp:   audit.Timestamp,
	}

	if len(audit.Changes) > 0 {
		changes := make(map[string]string)
		if err := json.Unmarshal(audit.Changes, &changes); err == nil {
			view.Changes = changes
		}
	}

	return view
}
