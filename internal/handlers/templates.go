package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/utils"
)

type TemplateView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func CreateTemplate(ctx *gin.Context) {
	var req services.CreateTemplateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := services.CreateTemplate(req)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	ctx.JSON(http.StatusCreated, buildTemplateView(template))
}

func UpdateTemplate(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "template_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req services.CreateTemplateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := services.UpdateTemplate(id, req)

	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		}
		return
	}

	ctx.JSON(http.StatusOK, buildTemplateView(template))
}

func GetTemplate(ctx *gin.Context) {
	id, err := utils.ParseIDParam(ctx, "template_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := services.GetTemplate(id)

	if err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}

	ctx.JSON(http.StatusOK, buildTemplateView(template))
}

func ListTemplates(ctx *gin.Context) {
	templates, err := services.ListTemplates()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates"})
		return
	}

	views := make([]TemplateView, 0, len(templates))
	for i := range templates {
		views = append(views, buildTemplateView(&templates[i]))
	}

	ctx.JSON(http.StatusOK, views)
}

func buildTemplateView(template *models.MessageTemplate) TemplateView {
	return TemplateView{
		ID:        template.ID,
		Name:      template.Name,
		Content:   template.Content,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}
}
