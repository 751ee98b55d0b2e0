package services

import (
	"time"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TimeEntryService interface {
	GetEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeEntry, error)
	CreateEntry(db *gorm.DB, userID, taskID uuid.UUID, description string, startedAt time.Time, endedAt *time.Time) (*models.TimeEntry, error)
	StartEntry(db *gorm.DB, userID, taskID uuid.UUID, description string) (*models.TimeEntry, error)
	StopEntry(db *gorm.DB, userID, id uuid.UUID) (*models.TimeEntry, error)
	UpdateEntry(db *gorm.DB, userID, id uuid.UUID, description *string, startedAt, endedAt *time.Time) (*models.TimeEntry, error)
	DeleteEntry(db *gorm.DB, userID, id uuid.UUID) error
}

type TimeEntryServiceImpl struct{}

func NewTimeEntryService() *TimeEntryServiceImpl {
	return &TimeEntryServiceImpl{}
}

func (s *TimeEntryServiceImpl) GetEntries(db *gorm.DB, userID, taskID uuid.UUID) ([]models.TimeEntry, error) {
	if _, err := loadTask(db, userID, taskID); err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	err := db.Where("task_id = ?", taskID).Order("started_at asc").Find(&entries).Error
	if err != nil {
		return nil, storeErr("list time entries", err)
	}
	return entries, nil
}

func (s *TimeEntryServiceImpl) CreateEntry(db *gorm.DB, userID, taskID uuid.UUID, description string, startedAt time.Time, endedAt *time.Time) (*models.TimeEntry, error) {
	if _, err := loadTask(db, userID, taskID); err != nil {
		return nil, err
	}
	if startedAt.IsZero() {
		return nil, invalidf("started_at", "started_at is required")
	}
	if endedAt != nil && endedAt.Before(startedAt) {
		return nil, invalidf("ended_at", "ended_at must not precede started_at")
	}

	entry := models.TimeEntry{
		ID:          uuid.Must(uuid.NewV4()),
		TaskID:      taskID,
		UserID:      userID,
		Description: description,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, storeErr("create time entry", err)
	}
	return &entry, nil
}

// StartEntry opens a running entry (nil ended_at) starting now.
func (s *TimeEntryServiceImpl) StartEntry(db *gorm.DB, userID, taskID uuid.UUID, description string) (*models.TimeEntry, error) {
	return s.CreateEntry(db, userID, taskID, description, time.Now(), nil)
}

// StopEntry closes a running entry at now. Stopping an already closed entry
// is a validation error, not a silent overwrite.
func (s *TimeEntryServiceImpl) StopEntry(db *gorm.DB, userID, id uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		return nil, storeErr("lookup time entry", err)
	}
	if entry.EndedAt != nil {
		return nil, invalidf("ended_at", "time entry is already stopped")
	}
	now := time.Now()
	entry.EndedAt = &now
	if err := db.Save(&entry).Error; err != nil {
		return nil, storeErr("stop time entry", err)
	}
	return &entry, nil
}

func (s *TimeEntryServiceImpl) UpdateEntry(db *gorm.DB, userID, id uuid.UUID, description *string, startedAt, endedAt *time.Time) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		return nil, storeErr("lookup time entry", err)
	}

	if description != nil {
		entry.Description = *description
	}
	if startedAt != nil {
		entry.StartedAt = *startedAt
	}
	if endedAt != nil {
		entry.EndedAt = endedAt
	}
	if entry.EndedAt != nil && entry.EndedAt.Before(entry.StartedAt) {
		return nil, invalidf("ended_at", "ended_at must not precede started_at")
	}

	if err := db.Save(&entry).Error; err != nil {
		return nil, storeErr("update time entry", err)
	}
	return &entry, nil
}

func (s *TimeEntryServiceImpl) DeleteEntry(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.TimeEntry{})
	if result.Error != nil {
		return storeErr("delete time entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
