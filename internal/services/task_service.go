package services

import (
	"context"
	"encoding/json"
	"strings"

	"task-management-api/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Publisher delivers a message to every live connection of a user.
type Publisher interface {
	Broadcast(userID string, message []byte)
}

// Delete/restore action types accepted by DeleteOrRestore.
const (
	ActionDelete     = "delete"
	ActionDeleteAll  = "deleteAll"
	ActionRestore    = "restore"
	ActionRestoreAll = "restoreAll"
)

// TaskService applies task lifecycle transitions.
type TaskService struct {
	db  *gorm.DB
	pub Publisher
}

// NewTaskService returns a TaskService; pub may be nil.
func NewTaskService(db *gorm.DB, pub Publisher) *TaskService {
	return &TaskService{db: db, pub: pub}
}

// Create stores a new task with its "assigned" activity and notifies the team.
func (s *TaskService) Create(ctx context.Context, cmd CreateTaskCommand) (*models.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var task *models.Task
	var notice *models.Notice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, err := resolveUsers(tx, cmd.Team)
		if err != nil {
			return err
		}
		text := assignmentMessage(len(team), cmd.priority, cmd.date)

		assets := cmd.Assets
		if assets == nil {
			assets = []string{}
		}
		task = &models.Task{
			Title:    cmd.Title,
			Date:     cmd.date,
			Stage:    cmd.stage,
			Priority: cmd.priority,
			Team:     team,
			Assets:   assets,
			Activities: []models.Activity{{
				Type:     models.ActivityAssigned,
				Activity: text,
				ByID:     cmd.AuthorID,
			}},
		}
		if err := tx.Omit("Team.*").Create(task).Error; err != nil {
			return err
		}

		notice, err = createNotice(tx, task.ID, team, text)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "create task")
	}

	s.publish(notice)
	log.WithFields(log.Fields{"task": task.ID, "team": len(task.Team)}).Info("task created")
	return task, nil
}

// Duplicate copies a task, its team, subtasks and assets under a new id and
// notifies the original team.
func (s *TaskService) Duplicate(ctx context.Context, id string) (*models.Task, error) {
	if err := validateID(id, "Task"); err != nil {
		return nil, err
	}

	var copyTask *models.Task
	var notice *models.Notice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src models.Task
		if err := tx.Preload("Team").Preload("SubTasks.Team").First(&src, "id = ?", id).Error; err != nil {
			return lookupErr(err, "Task not found.", "load task")
		}

		copyTask = &models.Task{
			Title:    src.Title + " - Duplicate",
			Date:     src.Date,
			Stage:    src.Stage,
			Priority: src.Priority,
			Team:     src.Team,
			Assets:   append([]string{}, src.Assets...),
		}
		if err := tx.Omit("Team.*").Create(copyTask).Error; err != nil {
			return err
		}

		for _, sub := range src.SubTasks {
			dup := models.SubTask{
				TaskID:      copyTask.ID,
				Title:       sub.Title,
				Description: sub.Description,
				Date:        sub.Date,
				Stage:       sub.Stage,
				Priority:    sub.Priority,
				Team:        sub.Team,
			}
			if err := tx.Omit("Team.*").Create(&dup).Error; err != nil {
				return err
			}
			copyTask.SubTasks = append(copyTask.SubTasks, dup)
		}

		text := assignmentMessage(len(src.Team), src.Priority, src.Date)
		var err error
		notice, err = createNotice(tx, copyTask.ID, src.Team, text)
		return err
	})
	if err != nil {
		return nil, wrapInternal(err, "duplicate task")
	}

	s.publish(notice)
	log.WithFields(log.Fields{"source": id, "task": copyTask.ID}).Info("task duplicated")
	return copyTask, nil
}

// PostActivity appends an activity entry to a task.
func (s *TaskService) PostActivity(ctx context.Context, taskID, authorID string, typ models.ActivityType, text string) (*models.Activity, error) {
	if err := validateID(taskID, "Task"); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureTask(db, taskID); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		TaskID:   taskID,
		Type:     typ,
		Activity: text,
		ByID:     authorID,
	}
	if err := db.Create(activity).Error; err != nil {
		return nil, wrapInternal(err, "post activity")
	}
	return activity, nil
}

// Update overwrites title, date, team, stage and priority of a task.
func (s *TaskService) Update(ctx context.Context, cmd UpdateTaskCommand) (*models.Task, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", cmd.ID).Error; err != nil {
			return lookupErr(err, "Task not found.", "load task")
		}
		team, err := resolveUsers(tx, cmd.Team)
		if err != nil {
			return err
		}
		task.Title = strings.TrimSpace(*cmd.Title)
		task.Date = cmd.date
		task.Stage = cmd.stage
		task.Priority = cmd.priority
		if err := tx.Model(&task).Select("title", "date", "stage", "priority").Updates(&task).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Association("Team").Replace(team); err != nil {
			return err
		}
		task.Team = team
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "update task")
	}
	return &task, nil
}

// Trash marks a task as trashed. Trashing a trashed task succeeds.
func (s *TaskService) Trash(ctx context.Context, cmd TrashTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return s.setTrashed(ctx, cmd.ID, true)
}

// DeleteOrRestore performs one of the delete/restore actions. id is only
// used by ActionDelete and ActionRestore.
func (s *TaskService) DeleteOrRestore(ctx context.Context, id, actionType string) error {
	db := s.db.WithContext(ctx)
	switch actionType {
	case ActionDelete:
		if err := validateID(id, "Task"); err != nil {
			return err
		}
		if err := ensureTask(db, id); err != nil {
			return err
		}
		return wrapInternal(db.Transaction(func(tx *gorm.DB) error {
			return deleteTasks(tx, []string{id})
		}), "delete task")
	case ActionDeleteAll:
		return wrapInternal(db.Transaction(func(tx *gorm.DB) error {
			var ids []string
			if err := tx.Model(&models.Task{}).Where("is_trashed = ?", true).Pluck("id", &ids).Error; err != nil {
				return err
			}
			log.WithField("count", len(ids)).Info("deleting trashed tasks")
			return deleteTasks(tx, ids)
		}), "delete trashed tasks")
	case ActionRestore:
		if err := validateID(id, "Task"); err != nil {
			return err
		}
		return s.setTrashed(ctx, id, false)
	case ActionRestoreAll:
		res := db.Model(&models.Task{}).Where("is_trashed = ?", true).Update("is_trashed", false)
		if res.Error != nil {
			return wrapInternal(res.Error, "restore trashed tasks")
		}
		log.WithField("count", res.RowsAffected).Info("restored trashed tasks")
		return nil
	default:
		return validationf("Unknown action type %q.", actionType)
	}
}

// List returns tasks newest first, optionally filtered by stage.
func (s *TaskService) List(ctx context.Context, stage string, trashed bool) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Preload("Team").Where("is_trashed = ?", trashed)
	if strings.TrimSpace(stage) != "" {
		normalized, _ := models.NormalizeStage(stage)
		query = query.Where("stage = ?", normalized)
	}
	tasks := []models.Task{}
	if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, wrapInternal(err, "list tasks")
	}
	return tasks, nil
}

// Get returns a task with its team, subtasks and activity authors resolved.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	if err := validateID(id, "Task"); err != nil {
		return nil, err
	}
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Team").
		Preload("SubTasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("SubTasks.Team").
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Activities.By").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, lookupErr(err, "Task not found.", "load task")
	}
	return &task, nil
}

func (s *TaskService) setTrashed(ctx context.Context, id string, trashed bool) error {
	res := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("is_trashed", trashed)
	if res.Error != nil {
		return wrapInternal(res.Error, "update task")
	}
	if res.RowsAffected == 0 {
		return notFound("Task not found.")
	}
	return nil
}

func (s *TaskService) publish(notice *models.Notice) {
	if s.pub == nil || notice == nil {
		return
	}
	evt := map[string]any{
		"type":     "notice_created",
		"noticeId": notice.ID,
		"taskId":   notice.TaskID,
		"text":     notice.Text,
		"version":  1,
	}
	bytes, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for _, u := range notice.Team {
		s.pub.Broadcast(u.ID, bytes)
	}
}

func createNotice(tx *gorm.DB, taskID string, team []models.User, text string) (*models.Notice, error) {
	notice := &models.Notice{
		Text:   text,
		TaskID: &taskID,
		Team:   team,
	}
	if err := tx.Omit("Team.*").Create(notice).Error; err != nil {
		return nil, err
	}
	return notice, nil
}

// deleteTasks hard-deletes tasks together with everything they own.
// Notices referencing them are kept.
func deleteTasks(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	subIDs := tx.Model(&models.SubTask{}).Select("id").Where("task_id IN ?", ids)
	if err := tx.Exec("DELETE FROM subtask_team WHERE sub_task_id IN (?)", subIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", ids).Delete(&models.SubTask{}).Error; err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", ids).Delete(&models.Activity{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM task_team WHERE task_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
}

func ensureTask(db *gorm.DB, id string) error {
	var count int64
	if err := db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return wrapInternal(err, "load task")
	}
	if count == 0 {
		return notFound("Task not found.")
	}
	return nil
}

// resolveUsers loads the users named by ids, ignoring duplicates.
// Unknown ids are rejected.
func resolveUsers(tx *gorm.DB, ids []string) ([]models.User, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	users := []models.User{}
	if len(unique) == 0 {
		return users, nil
	}
	if err := tx.Where("id IN ?", unique).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) != len(unique) {
		return nil, validationf("Team contains unknown users.")
	}
	// keep the caller's ordering
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i, id := range unique {
		users[i] = byID[id]
	}
	return users, nil
}
