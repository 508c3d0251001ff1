package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/handlers"
	"github.com/telconova/notifier/internal/middleware"
	"github.com/telconova/notifier/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		v1 := api.Group("/v1", middleware.AuthMiddleware())
		{
			v1.GET("/ws/stats", handlers.StatsWebSocket)

			rules := v1.Group("/rules")
			{
				rules.POST("", handlers.CreateRule)
				rules.GET("", handlers.ListRules)
				rules.PUT("/:rule_id", handlers.UpdateRule)
				rules.DELETE("/:rule_id", handlers.DeleteRule)
				rules.POST("/:rule_id/activate", handlers.ActivateRule)
				rules.POST("/:rule_id/deactivate", handlers.DeactivateRule)
				rules.GET("/:rule_id/audits", handlers.GetRuleAudits)
			}

			templates := v1.Group("/templates")
			{
				templates.POST("", handlers.CreateTemplate)
				templates.GET("", handlers.ListTemplates)
				templates.GET("/:template_id", handlers.GetTemplate)
				templates.PUT("/:template_id", handlers.UpdateTemplate)
			}

			notifications := v1.Group("/notifications")
			{
				notifications.POST("", handlers.CreateNotification)
				notifications.GET("/stats", handlers.GetQueueStats)
				notifications.GET("/errors", handlers.GetErrorLogs)
				notifications.GET("/queue", handlers.GetPendingQueue)
				notifications.GET("/:notification_id/history", handlers.GetNotificationHistory)
			}

			v1.POST("/events", handlers.TriggerEvent)
		}
	}

	return r
}
