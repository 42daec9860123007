package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"questboard/internal/model"
	"questboard/internal/reorder"
)

type SubtaskBody struct {
	Title       string `json:"title" example:"Draft outline"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty" example:"2026-11-15"`
}

type AddSubtaskInput struct {
	ID   string `path:"id" doc:"Project ID"`
	Body SubtaskBody
}

type EditSubtaskInput struct {
	ID        string `path:"id" doc:"Project ID"`
	SubtaskID string `path:"subtaskId" doc:"Subtask ID"`
	Body      SubtaskBody
}

type SubtaskInput struct {
	ID        string `path:"id" doc:"Project ID"`
	SubtaskID string `path:"subtaskId" doc:"Subtask ID"`
}

type ReorderSubtasksInput struct {
	ID   string `path:"id" doc:"Project ID"`
	Body reorder.Event
}

type AddChecklistInput struct {
	ID        string `path:"id" doc:"Project ID"`
	SubtaskID string `path:"subtaskId" doc:"Subtask ID"`
	Body      struct {
		Text string `json:"text" example:"Collect references"`
	}
}

type ChecklistItemInput struct {
	ID        string `path:"id" doc:"Project ID"`
	SubtaskID string `path:"subtaskId" doc:"Subtask ID"`
	ItemID    string `path:"itemId" doc:"Checklist item ID"`
}

type ProjectOutput struct {
	Body model.Project
}

type ProjectOrderOutput struct {
	Body struct {
		Project model.Project `json:"project"`
		Applied bool          `json:"applied" doc:"False when a stale id left the order unchanged"`
	}
}

func (h *ItemHandler) registerProjectRoutes(api huma.API) {
	const subtasks = "/api/v1/projects/{id}/subtasks"
	tags := []string{"projects"}

	huma.Register(api, huma.Operation{
		OperationID:   "add-subtask",
		Method:        http.MethodPost,
		Path:          subtasks,
		Summary:       "Add a subtask",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.AddSubtask)

	huma.Register(api, huma.Operation{
		OperationID: "edit-subtask",
		Method:      http.MethodPut,
		Path:        subtasks + "/{subtaskId}",
		Summary:     "Edit a subtask",
		Description: "Replace title, description and due date. Completion and checklist are kept.",
		Tags:        tags,
	}, h.EditSubtask)

	huma.Register(api, huma.Operation{
		OperationID: "delete-subtask",
		Method:      http.MethodDelete,
		Path:        subtasks + "/{subtaskId}",
		Summary:     "Delete a subtask",
		Tags:        tags,
	}, h.DeleteSubtask)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-subtask",
		Method:      http.MethodPost,
		Path:        subtasks + "/{subtaskId}/toggle",
		Summary:     "Toggle a subtask",
		Tags:        tags,
	}, h.ToggleSubtask)

	huma.Register(api, huma.Operation{
		OperationID: "reorder-subtasks",
		Method:      http.MethodPost,
		Path:        subtasks + "/reorder",
		Summary:     "Reorder a project's subtasks",
		Tags:        append(tags, "reorder"),
	}, h.ReorderSubtasks)

	huma.Register(api, huma.Operation{
		OperationID:   "add-checklist-item",
		Method:        http.MethodPost,
		Path:          subtasks + "/{subtaskId}/checklist",
		Summary:       "Add a checklist item",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.AddChecklistItem)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-checklist-item",
		Method:      http.MethodPost,
		Path:        subtasks + "/{subtaskId}/checklist/{itemId}/toggle",
		Summary:     "Toggle a checklist item",
		Tags:        tags,
	}, h.ToggleChecklistItem)

	huma.Register(api, huma.Operation{
		OperationID: "delete-checklist-item",
		Method:      http.MethodDelete,
		Path:        subtasks + "/{subtaskId}/checklist/{itemId}",
		Summary:     "Remove a checklist item",
		Tags:        tags,
	}, h.RemoveChecklistItem)
}

func (h *ItemHandler) projectResult(op string, p model.Project, err error) (*ProjectOutput, error) {
	if err != nil {
		return nil, h.fail(op, err)
	}
	return &ProjectOutput{Body: p}, nil
}

func (h *ItemHandler) AddSubtask(ctx context.Context, input *AddSubtaskInput) (*ProjectOutput, error) {
	p, err := h.store.AddSubtask(ctx, input.ID, model.Subtask{
		Title:       input.Body.Title,
		Description: input.Body.Description,
		DueDate:     input.Body.DueDate,
	})
	return h.projectResult("add subtask", p, err)
}

func (h *ItemHandler) EditSubtask(ctx context.Context, input *EditSubtaskInput) (*ProjectOutput, error) {
	p, err := h.store.EditSubtask(ctx, input.ID, model.Subtask{
		ID:          input.SubtaskID,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		DueDate:     input.Body.DueDate,
	})
	return h.projectResult("edit subtask", p, err)
}

func (h *ItemHandler) DeleteSubtask(ctx context.Context, input *SubtaskInput) (*ProjectOutput, error) {
	p, err := h.store.DeleteSubtask(ctx, input.ID, input.SubtaskID)
	return h.projectResult("delete subtask", p, err)
}

func (h *ItemHandler) ToggleSubtask(ctx context.Context, input *SubtaskInput) (*ProjectOutput, error) {
	p, err := h.store.ToggleSubtask(ctx, input.ID, input.SubtaskID)
	return h.projectResult("toggle subtask", p, err)
}

func (h *ItemHandler) ReorderSubtasks(ctx context.Context, input *ReorderSubtasksInput) (*ProjectOrderOutput, error) {
	out := &ProjectOrderOutput{}
	if !h.sensors.Accept(input.Body.Gesture) {
		p, err := h.store.Project(input.ID)
		if err != nil {
			return nil, h.fail("reorder subtasks", err)
		}
		out.Body.Project = p
		return out, nil
	}
	p, err := h.store.ReorderSubtasks(ctx, input.ID, input.Body)
	switch {
	case errors.Is(err, reorder.ErrIndexMiss):
		out.Body.Project = p
		return out, nil
	case err != nil:
		return nil, h.fail("reorder subtasks", err)
	}
	out.Body.Project = p
	out.Body.Applied = true
	return out, nil
}

func (h *ItemHandler) AddChecklistItem(ctx context.Context, input *AddChecklistInput) (*ProjectOutput, error) {
	p, err := h.store.AddChecklistItem(ctx, input.ID, input.SubtaskID, input.Body.Text)
	return h.projectResult("add checklist item", p, err)
}

func (h *ItemHandler) ToggleChecklistItem(ctx context.Context, input *ChecklistItemInput) (*ProjectOutput, error) {
	p, err := h.store.ToggleChecklistItem(ctx, input.ID, input.SubtaskID, input.ItemID)
	return h.projectResult("toggle checklist item", p, err)
}

func (h *ItemHandler) RemoveChecklistItem(ctx context.Context, input *ChecklistItemInput) (*ProjectOutput, error) {
	p, err := h.store.RemoveChecklistItem(ctx, input.ID, input.SubtaskID, input.ItemID)
	return h.projectResult("remove checklist item", p, err)
}
