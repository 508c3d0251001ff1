package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/models"
)

type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func CreateTemplate(req CreateTemplateRequest) (*models.MessageTemplate, error) {
	template := models.MessageTemplate{
		Name:    req.Name,
		Content: req.Content,
	}

	if err := db.DB.Create(&template).Error; err != nil {
		return nil, err
	}

	return &template, nil
}

func UpdateTemplate(id uint, req CreateTemplateRequest) (*models.MessageTemplate, error) {
	template, err := GetTemplate(id)

	if err != nil {
		return nil, err
	}

	template.Name = req.Name
	template.Content = req.Content

	if err := db.DB.Save(template).Error; err != nil {
		return nil, err
	}

	return template, nil
}

func GetTemplate(id uint) (*models.MessageTemplate, error) {
	var template models.MessageTemplate

	if err := db.DB.First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &template, nil
}

func ListTemplates() ([]models.MessageTemplate, error) {
	var templates []models.MessageTemplate

	if err := db.DB.Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}

	return templates, nil
}
