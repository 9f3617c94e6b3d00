package services

import (
	"context"
	"strings"

	"task-management-api/internal/models"

	"gorm.io/gorm"
)

// Subtask defaults applied when fields are omitted on creation.
const (
	DefaultSubTaskTitle    = "Untitled Subtask"
	DefaultSubTaskStage    = "TODO"
	DefaultSubTaskPriority = "NORMAL"
)

// SubTaskInput holds optional subtask fields. A nil field is absent: it
// takes its default on create and is left untouched on update.
type SubTaskInput struct {
	Title       *string
	Description *string
	Date        *string
	Stage       *string
	Priority    *string
	Team        []string
}

// SubTaskService manages the subtasks owned by a task.
type SubTaskService struct {
	db *gorm.DB
}

func NewSubTaskService(db *gorm.DB) *SubTaskService {
	return &SubTaskService{db: db}
}

// Create appends a subtask to a task.
func (s *SubTaskService) Create(ctx context.Context, taskID string, in SubTaskInput) (*models.SubTask, error) {
	if err := validateID(taskID, "Task"); err != nil {
		return nil, err
	}

	sub := &models.SubTask{
		TaskID:      taskID,
		Title:       valueOr(in.Title, DefaultSubTaskTitle),
		Description: valueOr(in.Description, ""),
		Date:        now().UTC(),
		Stage:       valueOr(in.Stage, DefaultSubTaskStage),
		Priority:    valueOr(in.Priority, DefaultSubTaskPriority),
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		date, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		sub.Date = date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTask(tx, taskID); err != nil {
			return err
		}
		team, err := resolveUsers(tx, in.Team)
		if err != nil {
			return err
		}
		sub.Team = team
		return tx.Omit("Team.*").Create(sub).Error
	})
	if err != nil {
		return nil, wrapInternal(err, "create subtask")
	}
	return sub, nil
}

// Update applies only the fields present in patch.
func (s *SubTaskService) Update(ctx context.Context, taskID, subTaskID string, patch SubTaskInput) (*models.SubTask, error) {
	if err := validateID(taskID, "Task"); err != nil {
		return nil, err
	}
	if err := validateID(subTaskID, "Subtask"); err != nil {
		return nil, err
	}

	var sub *models.SubTask
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if sub, err = findSubTask(tx, taskID, subTaskID); err != nil {
			return err
		}

		columns := []string{}
		if v, ok := nonEmpty(patch.Title); ok {
			sub.Title = v
			columns = append(columns, "title")
		}
		if v, ok := nonEmpty(patch.Description); ok {
			sub.Description = v
			columns = append(columns, "description")
		}
		if v, ok := nonEmpty(patch.Date); ok {
			date, err := parseDate(v)
			if err != nil {
				return err
			}
			sub.Date = date
			columns = append(columns, "date")
		}
		if v, ok := nonEmpty(patch.Stage); ok {
			sub.Stage = v
			columns = append(columns, "stage")
		}
		if v, ok := nonEmpty(patch.Priority); ok {
			sub.Priority = v
			columns = append(columns, "priority")
		}
		if len(columns) > 0 {
			if err := tx.Model(sub).Select(columns).Updates(sub).Error; err != nil {
				return err
			}
		}

		if patch.Team != nil {
			team, err := resolveUsers(tx, patch.Team)
			if err != nil {
				return err
			}
			if err := tx.Model(sub).Association("Team").Replace(team); err != nil {
				return err
			}
			sub.Team = team
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "update subtask")
	}
	return sub, nil
}

// Get returns one subtask of a task.
func (s *SubTaskService) Get(ctx context.Context, taskID, subTaskID string) (*models.SubTask, error) {
	if err := validateID(taskID, "Task"); err != nil {
		return nil, err
	}
	if err := validateID(subTaskID, "Subtask"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureTask(db, taskID); err != nil {
		return nil, err
	}
	sub, err := findSubTask(db, taskID, subTaskID)
	if err != nil {
		return nil, wrapInternal(err, "load subtask")
	}
	return sub, nil
}

// List returns the subtasks of a task in creation order.
func (s *SubTaskService) List(ctx context.Context, taskID string) ([]models.SubTask, error) {
	if err := validateID(taskID, "Task"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureTask(db, taskID); err != nil {
		return nil, err
	}
	subs := []models.SubTask{}
	if err := db.Preload("Team").Where("task_id = ?", taskID).Order("created_at asc").Find(&subs).Error; err != nil {
		return nil, wrapInternal(err, "list subtasks")
	}
	for i := range subs {
		if subs[i].Team == nil {
			subs[i].Team = []models.User{}
		}
	}
	return subs, nil
}

// Delete removes a subtask from its task.
func (s *SubTaskService) Delete(ctx context.Context, taskID, subTaskID string) error {
	if err := validateID(taskID, "Task"); err != nil {
		return err
	}
	if err := validateID(subTaskID, "Subtask"); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := findSubTask(tx, taskID, subTaskID)
		if err != nil {
			return err
		}
		if err := tx.Model(sub).Association("Team").Clear(); err != nil {
			return err
		}
		return tx.Delete(sub).Error
	})
	return wrapInternal(err, "delete subtask")
}

func findSubTask(db *gorm.DB, taskID, subTaskID string) (*models.SubTask, error) {
	var sub models.SubTask
	err := db.Preload("Team").Where("id = ? AND task_id = ?", subTaskID, taskID).First(&sub).Error
	if err != nil {
		return nil, lookupErr(err, "Subtask not found.", "load subtask")
	}
	if sub.Team == nil {
		sub.Team = []models.User{}
	}
	return &sub, nil
}

func valueOr(v *string, fallback string) string {
	if s, ok := nonEmpty(v); ok {
		return s
	}
	return fallback
}

func nonEmpty(v *string) (string, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}
