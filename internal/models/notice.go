package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notice is a broadcast message about a task with per-recipient read receipts.
// TaskID is a weak reference: the task may be hard-deleted while the notice
// survives, in which case Task resolves to nil.
type Notice struct {
	ID        string    `json:"_id" gorm:"primaryKey"`
	Text      string    `json:"text"`
	TaskID    *string   `json:"-" gorm:"column:task_id;index"`
	Task      *Task     `json:"task" gorm:"foreignKey:TaskID"`
	Team      []User    `json:"team" gorm:"many2many:notice_team;"`
	ReadBy    []User    `json:"isRead,omitempty" gorm:"many2many:notice_reads;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Notice Model
func (Notice) TableName() string {
	return "notices"
}

func (n *Notice) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// All returns every model managed by the store, in migration order.
func All() []any {
	return []any{&User{}, &Task{}, &SubTask{}, &Activity{}, &Notice{}}
}
