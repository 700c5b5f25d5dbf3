package api

import (
	"net/http"

	"waha-gateway/internal/models"
	"waha-gateway/internal/store"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	Store *store.Store
}

func NewTemplateHandler(st *store.Store) *TemplateHandler {
	return &TemplateHandler{Store: st}
}

func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	templates, err := h.Store.ListTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.Store.GetTemplate(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tmpl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	var tmpl models.Template
	if err := c.ShouldBindJSON(&tmpl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if tmpl.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template name is required"})
		return
	}

	// Upsert by name so re-posting a template updates it in place.
	if existing, err := h.Store.GetTemplate(tmpl.Name); err == nil && existing != nil {
		tmpl.ID = existing.ID
	}

	if err := h.Store.SaveTemplate(&tmpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.Store.DeleteTemplate(c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Template deleted"})
}
