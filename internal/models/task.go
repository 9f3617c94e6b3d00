package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStage represents the lifecycle bucket of a task
type TaskStage string

const (
	StageTodo       TaskStage = "todo"
	StageInProgress TaskStage = "in progress"
	StageCompleted  TaskStage = "completed"
)

// NormalizeStage lowercases a stage and reports whether it is known.
// "in_progress" and "in-progress" are accepted spellings of "in progress".
func NormalizeStage(s string) (TaskStage, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("_", " ", "-", " ").Replace(v)
	switch TaskStage(v) {
	case StageTodo, StageInProgress, StageCompleted:
		return TaskStage(v), true
	}
	return TaskStage(v), false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// NormalizePriority lowercases a priority and reports whether it is known.
func NormalizePriority(p string) (TaskPriority, bool) {
	v := TaskPriority(strings.ToLower(strings.TrimSpace(p)))
	switch v {
	case PriorityLow, PriorityNormal, PriorityMedium, PriorityHigh, PriorityUrgent:
		return v, true
	}
	return v, false
}

// Task represents a task in the system. It owns its subtasks and activities.
type Task struct {
	ID         string       `json:"_id" gorm:"primaryKey"`
	Title      string       `json:"title" gorm:"not null"`
	Date       time.Time    `json:"date"`
	Stage      TaskStage    `json:"stage" gorm:"not null;default:'todo';index"`
	Priority   TaskPriority `json:"priority" gorm:"not null;default:'normal'"`
	Team       []User       `json:"team" gorm:"many2many:task_team;"`
	Assets     []string     `json:"assets" gorm:"serializer:json"`
	IsTrashed  bool         `json:"isTrashed" gorm:"column:is_trashed;default:false;index"`
	SubTasks   []SubTask    `json:"subTasks" gorm:"foreignKey:TaskID"`
	Activities []Activity   `json:"activities" gorm:"foreignKey:TaskID"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SubTask is owned by exactly one Task and addressed by (TaskID, ID).
type SubTask struct {
	ID          string    `json:"_id" gorm:"primaryKey"`
	TaskID      string    `json:"taskId" gorm:"column:task_id;not null;index"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Stage       string    `json:"stage"`
	Priority    string    `json:"priority"`
	Team        []User    `json:"team" gorm:"many2many:subtask_team;"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for SubTask Model
func (SubTask) TableName() string {
	return "subtasks"
}

func (s *SubTask) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ActivityType names the kind of an activity entry; values outside the
// constants below are stored as given.
type ActivityType string

const (
	ActivityAssigned   ActivityType = "assigned"
	ActivityStarted    ActivityType = "started"
	ActivityInProgress ActivityType = "in progress"
	ActivityBug        ActivityType = "bug"
	ActivityCompleted  ActivityType = "completed"
	ActivityCommented  ActivityType = "commented"
)

// Activity is an append-only history entry on a task.
type Activity struct {
	ID        string       `json:"_id" gorm:"primaryKey"`
	TaskID    string       `json:"-" gorm:"column:task_id;not null;index"`
	Type      ActivityType `json:"type"`
	Activity  string       `json:"activity"`
	ByID      string       `json:"-" gorm:"column:by_id"`
	By        *User        `json:"by,omitempty" gorm:"foreignKey:ByID"`
	CreatedAt time.Time    `json:"date"`
}

// TableName specifies the table name for Activity Model
func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
