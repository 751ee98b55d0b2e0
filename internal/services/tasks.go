package services

import (
	"strings"
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input models.TaskCreate) (*models.TaskView, error)
	GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (*models.TaskView, error)
	GetTasks(db *gorm.DB, userID uuid.UUID, opts ListOptions) ([]models.TaskView, int64, error)
	UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch models.TaskPatch) (*models.TaskView, error)
	CompleteTask(db *gorm.DB, userID, id uuid.UUID) (*models.TaskView, error)
	DeleteTask(db *gorm.DB, userID, id uuid.UUID) error
	UpdateSubtask(db *gorm.DB, userID, taskID, subtaskID uuid.UUID, title *string, completed *bool) (*models.TaskView, error)
	GetSubtask(db *gorm.DB, userID, taskID, subtaskID uuid.UUID) (*models.Subtask, error)
}

// ListOptions narrows and pages the task list. Zero values mean no filter
// and first page with the default size.
type ListOptions struct {
	Status   models.TaskStatus
	Label    string
	Page     int
	PageSize int
}

type TaskServiceImpl struct {
	labels LabelService
}

func NewTaskService(labels LabelService) *TaskServiceImpl {
	return &TaskServiceImpl{labels: labels}
}

// AssembleTaskView shapes a task row and its related rows into the client
// representation. Progress is always recomputed from the subtask rows so a
// stale stored value can never leak out.
func AssembleTaskView(task *models.Task, labels []models.Label, subtasks []models.Subtask, timeSpent int64) *models.TaskView {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	subs := make([]models.SubtaskView, 0, len(subtasks))
	for _, st := range subtasks {
		subs = append(subs, models.SubtaskView{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}

	return &models.TaskView{
		ID:               task.ID,
		UserID:           task.UserID,
		Title:            task.Title,
		Description:      task.Description,
		DueDate:          task.DueDate,
		Priority:         task.Priority,
		Status:           task.Status,
		Progress:         ComputeProgress(subtasks, task.Status),
		CompletedAt:      task.CompletedAt,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		Labels:           names,
		Subtasks:         subs,
		TimeSpentSeconds: timeSpent,
	}
}

// loadTask fetches a task owned by userID. Absence and foreign ownership
// both surface as ErrNotFound.
func loadTask(db *gorm.DB, userID, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		return nil, storeErr("lookup task", err)
	}
	return &task, nil
}

func fetchLabels(db *gorm.DB, taskID uuid.UUID) ([]models.Label, error) {
	var labels []models.Label
	err := db.Model(&models.Label{}).
		Joins("JOIN task_labels ON task_labels.label_id = labels.id").
		Where("task_labels.task_id = ?", taskID).
		Order("labels.created_at asc, labels.name asc").
		Find(&labels).Error
	if err != nil {
		return nil, storeErr("fetch labels", err)
	}
	return labels, nil
}

func fetchSubtasks(db *gorm.DB, taskID uuid.UUID) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	err := db.Where("task_id = ?", taskID).
		Order("position asc, created_at asc").
		Find(&subtasks).Error
	if err != nil {
		return nil, storeErr("fetch subtasks", err)
	}
	return subtasks, nil
}

func fetchTimeSpent(db *gorm.DB, taskID uuid.UUID) (int64, error) {
	var entries []models.TimeEntry
	err := db.Where("task_id = ? AND ended_at IS NOT NULL", taskID).Find(&entries).Error
	if err != nil {
		return 0, storeErr("fetch time entries", err)
	}
	var total int64
	for i := range entries {
		total += entries[i].DurationSeconds()
	}
	return total, nil
}

// assemble loads a task's related rows and builds its view. The ownership
// check happens in loadTask before any related fetch.
func assemble(db *gorm.DB, task *models.Task) (*models.TaskView, error) {
	labels, err := fetchLabels(db, task.ID)
	if err != nil {
		return nil, err
	}
	subtasks, err := fetchSubtasks(db, task.ID)
	if err != nil {
		return nil, err
	}
	timeSpent, err := fetchTimeSpent(db, task.ID)
	if err != nil {
		return nil, err
	}
	return AssembleTaskView(task, labels, subtasks, timeSpent), nil
}

func validateStatus(s models.TaskStatus) error {
	if !models.ValidStatus(s) {
		return invalidf("status", "invalid status %q", string(s))
	}
	return nil
}

func validatePriority(p int) error {
	if p < models.MinPriority || p > models.MaxPriority {
		return invalidf("priority", "priority must be between %d and %d", models.MinPriority, models.MaxPriority)
	}
	return nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input models.TaskCreate) (*models.TaskView, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidf("title", "title is required")
	}
	if input.Priority == 0 {
		input.Priority = 3
	}
	if err := validatePriority(input.Priority); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.StatusPending
	}
	if err := validateStatus(input.Status); err != nil {
		return nil, err
	}
	for _, st := range input.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return nil, invalidf("subtasks", "subtask title is required")
		}
	}

	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      input.Status,
	}
	if task.Status == models.StatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	var view *models.TaskView
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return storeErr("create task", err)
		}
		subtasks, err := insertSubtasks(tx, task.ID, input.Subtasks)
		if err != nil {
			return err
		}
		if len(input.Labels) > 0 {
			if err := s.replaceLabels(tx, userID, task.ID, input.Labels); err != nil {
				return err
			}
		}

		task.Progress = ComputeProgress(subtasks, task.Status)
		if err := tx.Model(&task).Update("progress", task.Progress).Error; err != nil {
			return storeErr("persist progress", err)
		}

		view, err = assemble(tx, &task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (*models.TaskView, error) {
	task, err := loadTask(db, userID, id)
	if err != nil {
		return nil, err
	}
	return assemble(db, task)
}

func (s *TaskServiceImpl) GetTasks(db *gorm.DB, userID uuid.UUID, opts ListOptions) ([]models.TaskView, int64, error) {
	if opts.Status != "" {
		if err := validateStatus(opts.Status); err != nil {
			return nil, 0, err
		}
	}

	query := db.Model(&models.Task{}).Where("tasks.user_id = ?", userID)
	if opts.Status != "" {
		query = query.Where("tasks.status = ?", opts.Status)
	}
	if opts.Label != "" {
		query = query.
			Joins("JOIN task_labels ON task_labels.task_id = tasks.id").
			Joins("JOIN labels ON labels.id = task_labels.label_id").
			Where("labels.name = ?", opts.Label)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count tasks", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	var tasks []models.Task
	err := query.
		Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date asc, tasks.created_at asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, storeErr("list tasks", err)
	}

	views := make([]models.TaskView, 0, len(tasks))
	for i := range tasks {
		view, err := assemble(db, &tasks[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, nil
}

// UpdateTask applies a partial update in one transaction: field changes, the
// completed_at transition rule, full label replacement, full subtask
// replacement with progress recomputation, and the explicit progress
// override. Validation happens up front so a rejected patch writes nothing.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch models.TaskPatch) (*models.TaskView, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalidf("title", "title must not be empty")
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.Priority != nil {
		if err := validatePriority(*patch.Priority); err != nil {
			return nil, err
		}
	}
	if patch.Progress != nil {
		if patch.Subtasks != nil {
			return nil, invalidf("progress", "progress cannot be set while replacing subtasks")
		}
		if *patch.Progress < 0 || *patch.Progress > 100 {
			return nil, invalidf("progress", "progress must be between 0 and 100")
		}
	}
	if patch.Subtasks != nil {
		for _, st := range *patch.Subtasks {
			if strings.TrimSpace(st.Title) == "" {
				return nil, invalidf("subtasks", "subtask title is required")
			}
		}
	}

	var view *models.TaskView
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, userID, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description.Present {
			if patch.Description.Valid {
				task.Description = patch.Description.Value
			} else {
				task.Description = ""
			}
		}
		if patch.DueDate.Present {
			if patch.DueDate.Valid {
				due := patch.DueDate.Value
				task.DueDate = &due
			} else {
				task.DueDate = nil
			}
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
		}
		if patch.Status != nil && *patch.Status != task.Status {
			wasCompleted := task.Status == models.StatusCompleted
			task.Status = *patch.Status
			if task.Status == models.StatusCompleted {
				now := time.Now()
				task.CompletedAt = &now
			} else if wasCompleted {
				task.CompletedAt = nil
			}
		}

		if patch.Labels != nil {
			if err := s.replaceLabels(tx, userID, task.ID, *patch.Labels); err != nil {
				return err
			}
		}

		switch {
		case patch.Subtasks != nil:
			subtasks, err := replaceSubtasks(tx, task.ID, *patch.Subtasks)
			if err != nil {
				return err
			}
			task.Progress = ComputeProgress(subtasks, task.Status)
		case patch.Progress != nil:
			task.Progress = *patch.Progress
		default:
			// Keep the cached column in step with a status change.
			subtasks, err := fetchSubtasks(tx, task.ID)
			if err != nil {
				return err
			}
			task.Progress = ComputeProgress(subtasks, task.Status)
		}

		if err := tx.Save(task).Error; err != nil {
			return storeErr("update task", err)
		}

		view, err = assemble(tx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// CompleteTask is the hard-complete operation: it forces every subtask to
// completed and pins progress at 100, unlike a patch that merely sets the
// status to Completed.
func (s *TaskServiceImpl) CompleteTask(db *gorm.DB, userID, id uuid.UUID) (*models.TaskView, error) {
	var view *models.TaskView
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, userID, id)
		if err != nil {
			return err
		}

		now := time.Now()
		task.Status = models.StatusCompleted
		task.CompletedAt = &now
		task.Progress = 100

		err = tx.Model(&models.Subtask{}).
			Where("task_id = ? AND completed = ?", task.ID, false).
			Update("completed", true).Error
		if err != nil {
			return storeErr("complete subtasks", err)
		}
		if err := tx.Save(task).Error; err != nil {
			return storeErr("complete task", err)
		}

		view, err = assemble(tx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, userID, id)
		if err != nil {
			return err
		}

		// Postgres cascades these through the FKs; the explicit deletes keep
		// the sqlite test store consistent as well.
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Subtask{}).Error; err != nil {
			return storeErr("delete subtasks", err)
		}
		if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", task.ID).Error; err != nil {
			return storeErr("delete label associations", err)
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TimeEntry{}).Error; err != nil {
			return storeErr("delete time entries", err)
		}
		if err := tx.Delete(task).Error; err != nil {
			return storeErr("delete task", err)
		}
		return nil
	})
}

// UpdateSubtask renames or toggles one subtask and recomputes the parent's
// progress. It returns the parent's fresh view.
func (s *TaskServiceImpl) UpdateSubtask(db *gorm.DB, userID, taskID, subtaskID uuid.UUID, title *string, completed *bool) (*models.TaskView, error) {
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, invalidf("title", "title must not be empty")
	}

	var view *models.TaskView
	err := db.Transaction(func(tx *gorm.DB) error {
		task, err := loadTask(tx, userID, taskID)
		if err != nil {
			return err
		}

		var subtask models.Subtask
		if err := tx.Where("id = ? AND task_id = ?", subtaskID, task.ID).First(&subtask).Error; err != nil {
			return storeErr("lookup subtask", err)
		}

		if title != nil {
			subtask.Title = *title
		}
		if completed != nil {
			subtask.Completed = *completed
		}
		if err := tx.Save(&subtask).Error; err != nil {
			return storeErr("update subtask", err)
		}

		subtasks, err := fetchSubtasks(tx, task.ID)
		if err != nil {
			return err
		}
		task.Progress = ComputeProgress(subtasks, task.Status)
		if err := tx.Model(task).Update("progress", task.Progress).Error; err != nil {
			return storeErr("persist progress", err)
		}

		view, err = assemble(tx, task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *TaskServiceImpl) GetSubtask(db *gorm.DB, userID, taskID, subtaskID uuid.UUID) (*models.Subtask, error) {
	if _, err := loadTask(db, userID, taskID); err != nil {
		return nil, err
	}
	var subtask models.Subtask
	if err := db.Where("id = ? AND task_id = ?", subtaskID, taskID).First(&subtask).Error; err != nil {
		return nil, storeErr("lookup subtask", err)
	}
	return &subtask, nil
}

// replaceLabels swaps a task's full label set: clear the associations,
// resolve the new names (creating labels as needed), re-associate.
func (s *TaskServiceImpl) replaceLabels(tx *gorm.DB, userID, taskID uuid.UUID, names []string) error {
	if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", taskID).Error; err != nil {
		return storeErr("clear label associations", err)
	}
	labels, err := s.labels.Resolve(tx, userID, names)
	if err != nil {
		return err
	}
	for _, label := range labels {
		err := tx.Exec("INSERT INTO task_labels (task_id, label_id) VALUES (?, ?)", taskID, label.ID).Error
		if err != nil {
			return storeErr("associate label", err)
		}
	}
	return nil
}

func insertSubtasks(tx *gorm.DB, taskID uuid.UUID, inputs []models.SubtaskInput) ([]models.Subtask, error) {
	subtasks := make([]models.Subtask, 0, len(inputs))
	for i, in := range inputs {
		subtask := models.Subtask{
			ID:        uuid.Must(uuid.NewV4()),
			TaskID:    taskID,
			Title:     in.Title,
			Completed: in.Completed,
			Position:  i,
		}
		if err := tx.Create(&subtask).Error; err != nil {
			return nil, storeErr("create subtask", err)
		}
		subtasks = append(subtasks, subtask)
	}
	return subtasks, nil
}

func replaceSubtasks(tx *gorm.DB, taskID uuid.UUID, inputs []models.SubtaskInput) ([]models.Subtask, error) {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.Subtask{}).Error; err != nil {
		return nil, storeErr("clear subtasks", err)
	}
	return insertSubtasks(tx, taskID, inputs)
}
