package handlers

import (
	"net/http"

	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LabelHandler struct {
	db           *gorm.DB
	labelService services.LabelService
}

func NewLabelHandler(db *gorm.DB, labelService services.LabelService) *LabelHandler {
	return &LabelHandler{db: db, labelService: labelService}
}

func (h *LabelHandler) GetLabels(c *gin.Context) {
	userID, _, ok := requestScope(c, "")
	if !ok {
		return
	}

	labels, err := h.labelService.GetLabels(h.db, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *LabelHandler) CreateLabel(c *gin.Context) {
	userID, _, ok := requestScope(c, "")
	if !ok {
		return
	}

	var input struct {
		Name        string `json:"name" binding:"required"`
		Color       string `json:"color"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	label, err := h.labelService.CreateLabel(h.db, userID, input.Name, input.Color, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Color       *string `json:"color"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	label, err := h.labelService.UpdateLabel(h.db, userID, id, input.Name, input.Color, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	if err := h.labelService.DeleteLabel(h.db, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "label deleted"})
}
