package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// TemplateController manages per-user reusable post templates.
type TemplateController struct {
	db *gorm.DB
}

// NewTemplateController creates a new TemplateController instance.
func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{db: db}
}

// ownedTemplate loads a template and enforces ownership. Missing rows answer
// 403 rather than 404 so template ids of other users are not probeable.
func (t *TemplateController) ownedTemplate(ctx *gin.Context) (*models.Template, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, utils.MsgUnauthorized)
		return nil, false
	}

	var tpl models.Template
	if err := t.db.First(&tpl, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusForbidden, 40320, utils.MsgForbidden)
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load template")
		return nil, false
	}
	if tpl.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40321, utils.MsgForbidden)
		return nil, false
	}
	return &tpl, true
}

// ListTemplates returns all templates owned by the viewer.
func (t *TemplateController) ListTemplates(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40141, utils.MsgUnauthorized)
		return
	}

	var templates []models.Template
	if err := t.db.Where("user_id = ?", userID).Order("id ASC").Find(&templates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list templates")
		return
	}

	items := make([]gin.H, 0, len(templates))
	for _, tpl := range templates {
		items = append(items, gin.H{"id": tpl.ID, "name": tpl.Name, "content": tpl.Content})
	}
	utils.Success(ctx, gin.H{"templates": items})
}

// GetTemplate returns one template, owner only.
func (t *TemplateController) GetTemplate(ctx *gin.Context) {
	tpl, ok := t.ownedTemplate(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"template": gin.H{"id": tpl.ID, "name": tpl.Name, "content": tpl.Content}})
}

// CreateTemplate stores a new template, capped at 25 per user.
func (t *TemplateController) CreateTemplate(ctx *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required,max=32"`
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, utils.MsgBadRequest)
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40142, utils.MsgUnauthorized)
		return
	}

	var count int64
	if err := t.db.Model(&models.Template{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to count templates")
		return
	}
	if count >= models.MaxTemplatesPerUser {
		utils.Error(ctx, http.StatusBadRequest, 40051, "You have reached the limit of templates")
		return
	}

	tpl := models.Template{
		UserID:  userID,
		Name:    req.Name,
		Content: utils.Sanitize(req.Content),
	}
	if err := t.db.Create(&tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to create template")
		return
	}

	utils.Success(ctx, gin.H{"template": gin.H{"id": tpl.ID}})
}

// UpdateTemplate replaces the content of an owned template.
func (t *TemplateController) UpdateTemplate(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, utils.MsgBadRequest)
		return
	}

	tpl, ok := t.ownedTemplate(ctx)
	if !ok {
		return
	}

	tpl.Content = utils.Sanitize(req.Content)
	if err := t.db.Save(tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to update template")
		return
	}

	utils.Success(ctx, gin.H{"template": gin.H{"content": tpl.Content}})
}

// DeleteTemplate removes an owned template.
func (t *TemplateController) DeleteTemplate(ctx *gin.Context) {
	tpl, ok := t.ownedTemplate(ctx)
	if !ok {
		return
	}
	if err := t.db.Delete(tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to delete template")
		return
	}
	utils.Success(ctx, gin.H{"template": gin.H{"content": tpl.Content}})
}
