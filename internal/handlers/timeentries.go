package handlers

import (
	"net/http"
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TimeEntryHandler struct {
	db           *gorm.DB
	entryService services.TimeEntryService
}

func NewTimeEntryHandler(db *gorm.DB, entryService services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{db: db, entryService: entryService}
}

func (h *TimeEntryHandler) GetEntries(c *gin.Context) {
	userID, taskID, ok := requestScope(c, "id")
	if !ok {
		return
	}

	entries, err := h.entryService.GetEntries(h.db, userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *TimeEntryHandler) CreateEntry(c *gin.Context) {
	userID, taskID, ok := requestScope(c, "id")
	if !ok {
		return
	}

	var input struct {
		Description string     `json:"description"`
		StartedAt   time.Time  `json:"started_at" binding:"required"`
		EndedAt     *time.Time `json:"ended_at"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	entry, err := h.entryService.CreateEntry(h.db, userID, taskID, input.Description, input.StartedAt, input.EndedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *TimeEntryHandler) StartEntry(c *gin.Context) {
	userID, taskID, ok := requestScope(c, "id")
	if !ok {
		return
	}

	var input struct {
		Description string `json:"description"`
	}
	// Body is optional for start.
	_ = c.ShouldBindJSON(&input)

	entry, err := h.entryService.StartEntry(h.db, userID, taskID, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *TimeEntryHandler) StopEntry(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	entry, err := h.entryService.StopEntry(h.db, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *TimeEntryHandler) UpdateEntry(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	var input struct {
		Description *string    `json:"description"`
		StartedAt   *time.Time `json:"started_at"`
		EndedAt     *time.Time `json:"ended_at"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	entry, err := h.entryService.UpdateEntry(h.db, userID, id, input.Description, input.StartedAt, input.EndedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *TimeEntryHandler) DeleteEntry(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(h.db, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "time entry deleted"})
}
