package services

import (
	"fmt"
	"time"

	"task-management-api/internal/models"
)

// assignmentMessage composes the notice text sent to a task's team.
func assignmentMessage(teamSize int, priority models.TaskPriority, date time.Time) string {
	text := "New project has been assigned to you"
	if teamSize > 1 {
		text += fmt.Sprintf(" and %d others.", teamSize-1)
	}
	return text + fmt.Sprintf(
		" The task priority is set a %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		priority, date.UTC().Format("Mon Jan 02 2006"),
	)
}
