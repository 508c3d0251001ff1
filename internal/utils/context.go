package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/types"
)

// GetCurrentActor returns the authenticated username set by the auth
// middleware.
func GetCurrentActor(ctx *gin.Context) (string, error) {
	actor, exists := ctx.Get(types.ContextActorKey)

	if !exists {
		return "", fmt.Errorf("actor not authenticated")
	}

	username, ok := actor.(string)

	if !ok || username == "" {
		return "", fmt.Errorf("invalid actor in context")
	}

	return username, nil
}

// ParseIDParam parses a numeric path parameter.
func ParseIDParam(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 64)

	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(value), nil
}
