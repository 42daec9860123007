package store

import (
	"context"
	"fmt"
	"strings"

	"questboard/internal/model"
	"questboard/internal/progress"
	"questboard/internal/validate"
)

// AddSubtask appends st to a project. The subtask gets a fresh id and an
// empty checklist if it has none.
func (s *Store) AddSubtask(ctx context.Context, projectID string, st model.Subtask) (model.Project, error) {
	if strings.TrimSpace(st.Title) == "" {
		return model.Project{}, fmt.Errorf("add subtask: %w", ErrEmptyText)
	}
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		st = validate.Subtask(st)
		st.ID = s.ids.NewID()
		for i := range st.Checklist {
			st.Checklist[i].ID = s.ids.NewID()
		}
		p.Subtasks = append(p.Subtasks, st)
		return nil
	})
}

// EditSubtask replaces the title, description and due date of a subtask.
// Its completion flag and checklist are kept.
func (s *Store) EditSubtask(ctx context.Context, projectID string, edit model.Subtask) (model.Project, error) {
	if strings.TrimSpace(edit.Title) == "" {
		return model.Project{}, fmt.Errorf("edit subtask: %w", ErrEmptyText)
	}
	edit = validate.Subtask(edit)
	return s.mutateSubtask(ctx, projectID, edit.ID, func(st *model.Subtask) error {
		st.Title = edit.Title
		st.Description = edit.Description
		st.DueDate = edit.DueDate
		return nil
	})
}

// DeleteSubtask removes a subtask. Removing the last one resets progress to 0.
func (s *Store) DeleteSubtask(ctx context.Context, projectID, subtaskID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i, st := range p.Subtasks {
			if st.ID == subtaskID {
				p.Subtasks = append(p.Subtasks[:i:i], p.Subtasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("subtask %s: %w", subtaskID, ErrNotFound)
	})
}

// ToggleSubtask flips a subtask's completion. Its checklist is left untouched.
func (s *Store) ToggleSubtask(ctx context.Context, projectID, subtaskID string) (model.Project, error) {
	return s.mutateSubtask(ctx, projectID, subtaskID, func(st *model.Subtask) error {
		st.Completed = !st.Completed
		return nil
	})
}

// AddChecklistItem appends an unchecked item to a subtask's checklist.
func (s *Store) AddChecklistItem(ctx context.Context, projectID, subtaskID, text string) (model.Project, error) {
	if strings.TrimSpace(text) == "" {
		return model.Project{}, fmt.Errorf("add checklist item: %w", ErrEmptyText)
	}
	return s.mutateSubtask(ctx, projectID, subtaskID, func(st *model.Subtask) error {
		st.Checklist = append(st.Checklist, model.ChecklistItem{
			ID:   s.ids.NewID(),
			Text: validate.String(text),
		})
		return nil
	})
}

// ToggleChecklistItem flips a checklist item. Only the subtask's checklist
// progress changes; project progress depends on subtasks alone.
func (s *Store) ToggleChecklistItem(ctx context.Context, projectID, subtaskID, itemID string) (model.Project, error) {
	return s.mutateSubtask(ctx, projectID, subtaskID, func(st *model.Subtask) error {
		for i := range st.Checklist {
			if st.Checklist[i].ID == itemID {
				st.Checklist[i].Completed = !st.Checklist[i].Completed
				return nil
			}
		}
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	})
}

// RemoveChecklistItem deletes an item from a subtask's checklist.
func (s *Store) RemoveChecklistItem(ctx context.Context, projectID, subtaskID, itemID string) (model.Project, error) {
	return s.mutateSubtask(ctx, projectID, subtaskID, func(st *model.Subtask) error {
		for i, it := range st.Checklist {
			if it.ID == itemID {
				st.Checklist = append(st.Checklist[:i:i], st.Checklist[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	})
}

// mutateProject applies fn to a copy of the project and stores the result with
// its derived fields recomputed. Nothing is stored when fn or the sink fails.
func (s *Store) mutateProject(ctx context.Context, id string, fn func(*model.Project) error) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.projects, id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	p := s.projects[i].Clone()
	if err := fn(&p); err != nil {
		return model.Project{}, err
	}
	p = progress.Refresh(p)
	if len(p.Subtasks) == 0 {
		p.Progress = 0
	}
	if err := s.sink.Upsert(ctx, p); err != nil {
		return model.Project{}, fmt.Errorf("persist project %s: %w", id, err)
	}
	s.projects[i] = p
	return p.Clone(), nil
}

func (s *Store) mutateSubtask(ctx context.Context, projectID, subtaskID string, fn func(*model.Subtask) error) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Subtasks {
			if p.Subtasks[i].ID == subtaskID {
				return fn(&p.Subtasks[i])
			}
		}
		return fmt.Errorf("subtask %s: %w", subtaskID, ErrNotFound)
	})
}
