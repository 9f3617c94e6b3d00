package services

import (
	"context"

	"task-management-api/internal/models"

	"gorm.io/gorm"
)

const dashboardSampleSize = 10

// PriorityTotal is one bar of the priority chart.
type PriorityTotal struct {
	Name  models.TaskPriority `json:"name"`
	Total int                 `json:"total"`
}

// DashboardSummary is a read-only projection of the current store state.
type DashboardSummary struct {
	TotalTasks int                      `json:"totalTasks"`
	LastTasks  []models.Task            `json:"lastTasks"`
	Users      []models.User            `json:"users"`
	Tasks      map[models.TaskStage]int `json:"tasks"`
	GraphData  []PriorityTotal          `json:"graphData"`
}

// DashboardService computes summary statistics on every call.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)

	tasks := []models.Task{}
	if err := db.Preload("Team").Where("is_trashed = ?", false).Order("created_at desc").Find(&tasks).Error; err != nil {
		return nil, wrapInternal(err, "load tasks")
	}

	users := []models.User{}
	if err := db.Where("is_active = ?", true).Order("created_at desc").Limit(dashboardSampleSize).Find(&users).Error; err != nil {
		return nil, wrapInternal(err, "load users")
	}

	byStage := make(map[models.TaskStage]int)
	byPriority := make(map[models.TaskPriority]int)
	var order []models.TaskPriority
	for _, t := range tasks {
		byStage[t.Stage]++
		if _, seen := byPriority[t.Priority]; !seen {
			order = append(order, t.Priority)
		}
		byPriority[t.Priority]++
	}

	graph := make([]PriorityTotal, 0, len(order))
	for _, p := range order {
		graph = append(graph, PriorityTotal{Name: p, Total: byPriority[p]})
	}

	last := tasks
	if len(last) > dashboardSampleSize {
		last = last[:dashboardSampleSize]
	}

	return &DashboardSummary{
		TotalTasks: len(tasks),
		LastTasks:  last,
		Users:      users,
		Tasks:      byStage,
		GraphData:  graph,
	}, nil
}
