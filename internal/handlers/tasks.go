package handlers

import (
	"net/http"
	"strconv"

	"github.com/sainivas456/TaskFlow-sub000/internal/middleware"
	"github.com/sainivas456/TaskFlow-sub000/internal/models"
	"github.com/sainivas456/TaskFlow-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

// requestScope pulls the authenticated user and, when name is non-empty, a
// uuid path parameter. It writes the error response itself on failure.
func requestScope(c *gin.Context, name string) (userID, pathID uuid.UUID, ok bool) {
	userID, exists := middleware.UserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	if name == "" {
		return userID, uuid.Nil, true
	}
	pathID, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, pathID, true
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, _, ok := requestScope(c, "")
	if !ok {
		return
	}

	var input models.TaskCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	view, err := h.taskService.CreateTask(h.db, userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, _, ok := requestScope(c, "")
	if !ok {
		return
	}

	opts := services.ListOptions{
		Status:   models.TaskStatus(c.Query("status")),
		Label:    c.Query("label"),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("pageSize"), 50),
	}

	views, total, err := h.taskService.GetTasks(h.db, userID, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": views,
		"total": total,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	view, err := h.taskService.GetTaskByID(h.db, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	view, err := h.taskService.UpdateTask(h.db, userID, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	view, err := h.taskService.CompleteTask(h.db, userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, id, ok := requestScope(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(h.db, userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	userID, taskID, ok := requestScope(c, "id")
	if !ok {
		return
	}
	subtaskID, err := uuid.FromString(c.Param("subtask_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}

	var input struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	view, err := h.taskService.UpdateSubtask(h.db, userID, taskID, subtaskID, input.Title, input.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
