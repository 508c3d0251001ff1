package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/types"
)

type TriggerEventRequest struct {
	EventType types.EventTrigger `json:"event_type" binding:"required"`
	Payload   map[string]any     `json:"payload"`
}

// TriggerEvent accepts a domain event and dispatches it to matching rules.
// Fire-and-forget: per-rule outcomes are visible only through the statistics
// and history queries.
func TriggerEvent(ctx *gin.Context) {
	var req TriggerEventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.EventType.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
		return
	}

	services.ProcessEvent(req.EventType, req.Payload)

	ctx.JSON(http.StatusAccepted, gin.H{"message": "Event accepted"})
}
