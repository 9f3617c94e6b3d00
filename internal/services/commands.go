package services

import (
	"strings"
	"time"

	"task-management-api/internal/models"

	"github.com/google/uuid"
)

// CreateTaskCommand is the validated input of TaskService.Create.
type CreateTaskCommand struct {
	Title    string
	Team     []string
	Stage    string
	Date     string
	Priority string
	Assets   []string
	AuthorID string

	stage    models.TaskStage
	priority models.TaskPriority
	date     time.Time
}

func (c *CreateTaskCommand) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return validationf("Task title is required.")
	}
	var err error
	if c.stage, err = parseStage(c.Stage); err != nil {
		return err
	}
	if c.priority, err = parsePriority(c.Priority); err != nil {
		return err
	}
	if strings.TrimSpace(c.Date) == "" {
		c.date = now().UTC()
	} else if c.date, err = parseDate(c.Date); err != nil {
		return err
	}
	return nil
}

// UpdateTaskCommand overwrites every mutable field of a task. Fields are
// pointers so that omission can be told apart from an empty value; an
// omitted field is rejected rather than preserved.
type UpdateTaskCommand struct {
	ID       string
	Title    *string
	Date     *string
	Team     []string
	Stage    *string
	Priority *string

	stage    models.TaskStage
	priority models.TaskPriority
	date     time.Time
}

func (c *UpdateTaskCommand) Validate() error {
	if err := validateID(c.ID, "Task"); err != nil {
		return err
	}
	if c.Title == nil || strings.TrimSpace(*c.Title) == "" {
		return validationf("Task title is required.")
	}
	if c.Date == nil {
		return validationf("Task date is required.")
	}
	if c.Team == nil {
		return validationf("Task team is required.")
	}
	if c.Stage == nil {
		return validationf("Task stage is required.")
	}
	if c.Priority == nil {
		return validationf("Task priority is required.")
	}
	var err error
	if c.stage, err = parseStage(*c.Stage); err != nil {
		return err
	}
	if c.priority, err = parsePriority(*c.Priority); err != nil {
		return err
	}
	if c.date, err = parseDate(*c.Date); err != nil {
		return err
	}
	return nil
}

// TrashTaskCommand moves a task to the trash.
type TrashTaskCommand struct {
	ID string
}

func (c TrashTaskCommand) Validate() error {
	return validateID(c.ID, "Task")
}

// validateID rejects identifiers that could never name a stored record.
func validateID(id, entity string) error {
	if strings.TrimSpace(id) == "" {
		return validationf("%s ID is required.", entity)
	}
	if _, err := uuid.Parse(id); err != nil {
		return validationf("Invalid %s ID.", entity)
	}
	return nil
}

func parseStage(s string) (models.TaskStage, error) {
	if strings.TrimSpace(s) == "" {
		return "", validationf("Task stage is required.")
	}
	stage, ok := models.NormalizeStage(s)
	if !ok {
		return "", validationf("Invalid task stage %q.", s)
	}
	return stage, nil
}

func parsePriority(p string) (models.TaskPriority, error) {
	if strings.TrimSpace(p) == "" {
		return "", validationf("Task priority is required.")
	}
	priority, ok := models.NormalizePriority(p)
	if !ok {
		return "", validationf("Invalid task priority %q.", p)
	}
	return priority, nil
}

var dateLayouts = []string{
	"2006-01-02",  // ISO date
	time.RFC3339,  // full RFC3339
	time.RFC3339Nano,
	"2 Jan 2006",  // e.g., 30 Oct 2025
	"02 Jan 2006", // zero-padded day
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, validationf("Invalid date %q.", s)
}

// now is a small indirection to allow test stubbing if needed.
var now = time.Now
