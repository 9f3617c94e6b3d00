package handlers

import (
	"net/http"
	"testing"

	"task-management-api/internal/models"
	"task-management-api/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type subTaskEnvelope struct {
	Status  bool           `json:"status"`
	SubTask models.SubTask `json:"subTask"`
}

func TestSubTaskRoutes(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seed("Alice", false)
	task := env.createTask(token, []string{alice.ID}, "Launch")
	base := "/api/tasks/" + task.ID + "/subtasks"

	// no body at all
	w := env.do(http.MethodPost, base, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[subTaskEnvelope](t, w).SubTask
	require.Equal(t, services.DefaultSubTaskTitle, created.Title)
	require.Equal(t, services.DefaultSubTaskStage, created.Stage)
	require.Equal(t, services.DefaultSubTaskPriority, created.Priority)
	require.NotNil(t, created.Team)
	require.Empty(t, created.Team)

	w = env.do(http.MethodPut, base+"/"+created.ID, map[string]any{"title": "Write docs", "team": []string{alice.ID}}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, base+"/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[subTaskEnvelope](t, w).SubTask
	require.Equal(t, "Write docs", got.Title)
	require.Equal(t, services.DefaultSubTaskStage, got.Stage)
	require.Len(t, got.Team, 1)

	w = env.do(http.MethodGet, base, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		SubTasks []models.SubTask `json:"subTasks"`
	}](t, w).SubTasks
	require.Len(t, list, 1)

	w = env.do(http.MethodDelete, base+"/"+created.ID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, base+"/"+created.ID, nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/tasks/"+uuid.NewString()+"/subtasks", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}
