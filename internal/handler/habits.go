package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"questboard/internal/model"
)

type CountInput struct {
	ID   string `path:"id" doc:"Habit ID"`
	Body struct {
		Count int `json:"count" doc:"New count; negative values are stored as 0" example:"3"`
	}
}

type HabitOutput struct {
	Body HabitView
}

type StatusInput struct {
	ID   string `path:"id" doc:"Task ID"`
	Body struct {
		Status model.TaskStatus `json:"status" enum:"Pending,In Progress,Completed" example:"In Progress"`
	}
}

type TaskOutput struct {
	Body model.Task
}

func (h *ItemHandler) registerHabitRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-habit-count",
		Method:      http.MethodPut,
		Path:        "/api/v1/habits/{id}/count",
		Summary:     "Set a countable habit's count",
		Tags:        []string{"habits"},
	}, h.UpdateCount)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-habit",
		Method:      http.MethodPost,
		Path:        "/api/v1/habits/{id}/toggle",
		Summary:     "Toggle a non-countable habit",
		Description: "Countable habits complete by count and reject this with 409.",
		Tags:        []string{"habits"},
	}, h.ToggleHabit)
}

func (h *ItemHandler) registerTaskRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-task-status",
		Method:      http.MethodPut,
		Path:        "/api/v1/tasks/{id}/status",
		Summary:     "Set a task's status",
		Tags:        []string{"tasks"},
	}, h.SetTaskStatus)
}

func (h *ItemHandler) UpdateCount(ctx context.Context, input *CountInput) (*HabitOutput, error) {
	habit, err := h.store.UpdateCount(ctx, input.ID, input.Body.Count)
	if err != nil {
		return nil, h.fail("update count", err)
	}
	return &HabitOutput{Body: viewHabit(habit)}, nil
}

func (h *ItemHandler) ToggleHabit(ctx context.Context, input *ItemIDInput) (*HabitOutput, error) {
	habit, err := h.store.ToggleHabit(ctx, input.ID)
	if err != nil {
		return nil, h.fail("toggle habit", err)
	}
	return &HabitOutput{Body: viewHabit(habit)}, nil
}

func (h *ItemHandler) SetTaskStatus(ctx context.Context, input *StatusInput) (*TaskOutput, error) {
	task, err := h.store.SetTaskStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, h.fail("set task status", err)
	}
	return &TaskOutput{Body: task}, nil
}
