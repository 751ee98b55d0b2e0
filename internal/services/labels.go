package services

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type LabelService interface {
	Resolve(db *gorm.DB, userID uuid.UUID, names []string) ([]models.Label, error)
	CreateLabel(db *gorm.DB, userID uuid.UUID, name, color, description string) (*models.Label, error)
	GetLabels(db *gorm.DB, userID uuid.UUID) ([]models.Label, error)
	UpdateLabel(db *gorm.DB, userID, id uuid.UUID, name, color, description *string) (*models.Label, error)
	DeleteLabel(db *gorm.DB, userID, id uuid.UUID) error
}

type LabelServiceImpl struct{}

func NewLabelService() *LabelServiceImpl {
	return &LabelServiceImpl{}
}

// RandomColor returns a "#RRGGBB" hex color for implicitly created labels.
func RandomColor() string {
	return fmt.Sprintf("#%06X", rand.Intn(0x1000000))
}

// Resolve maps label names to label rows owned by userID, creating any that
// do not exist yet with a random color. Names match case-sensitively. The
// unique (user_id, name) index is the authority on duplicates: if an insert
// loses a race, the winning row is fetched and used instead.
func (s *LabelServiceImpl) Resolve(db *gorm.DB, userID uuid.UUID, names []string) ([]models.Label, error) {
	labels := make([]models.Label, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidf("labels", "label name must not be empty")
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		var label models.Label
		err := db.Where("user_id = ? AND name = ?", userID, name).First(&label).Error
		if err == nil {
			labels = append(labels, label)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr("lookup label", err)
		}

		label = models.Label{
			ID:     uuid.Must(uuid.NewV4()),
			UserID: userID,
			Name:   name,
			Color:  RandomColor(),
		}
		err = db.Create(&label).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent resolve created it first; use that row.
			if err := db.Where("user_id = ? AND name = ?", userID, name).First(&label).Error; err != nil {
				return nil, storeErr("refetch label", err)
			}
		} else if err != nil {
			return nil, storeErr("create label", err)
		}
		labels = append(labels, label)
	}

	return labels, nil
}

func (s *LabelServiceImpl) CreateLabel(db *gorm.DB, userID uuid.UUID, name, color, description string) (*models.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("name", "name is required")
	}
	if color == "" {
		color = RandomColor()
	}

	label := models.Label{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      userID,
		Name:        name,
		Color:       color,
		Description: description,
	}
	if err := db.Create(&label).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalidf("name", "label %q already exists", name)
		}
		return nil, storeErr("create label", err)
	}
	return &label, nil
}

func (s *LabelServiceImpl) GetLabels(db *gorm.DB, userID uuid.UUID) ([]models.Label, error) {
	var labels []models.Label
	err := db.Where("user_id = ?", userID).Order("name asc").Find(&labels).Error
	if err != nil {
		return nil, storeErr("list labels", err)
	}
	return labels, nil
}

func (s *LabelServiceImpl) UpdateLabel(db *gorm.DB, userID, id uuid.UUID, name, color, description *string) (*models.Label, error) {
	var label models.Label
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&label).Error; err != nil {
		return nil, storeErr("lookup label", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, invalidf("name", "name must not be empty")
		}
		label.Name = trimmed
	}
	if color != nil {
		label.Color = *color
	}
	if description != nil {
		label.Description = *description
	}

	if err := db.Save(&label).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalidf("name", "label %q already exists", label.Name)
		}
		return nil, storeErr("update label", err)
	}
	return &label, nil
}

func (s *LabelServiceImpl) DeleteLabel(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Label{})
	if result.Error != nil {
		return storeErr("delete label", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	// Drop dangling associations; postgres does this via the FK cascade but
	// gorm's sqlite join table has no such constraint.
	if err := db.Exec("DELETE FROM task_labels WHERE label_id = ?", id).Error; err != nil {
		return storeErr("delete label associations", err)
	}
	return nil
}
