package store

import (
	"context"
	"fmt"
	"log/slog"

	"questboard/internal/model"
	"questboard/internal/reorder"
)

// Reorder applies a drag event to a collection and returns the resulting id
// order. Stale ids leave the order unchanged; the error then wraps
// reorder.ErrIndexMiss.
func (s *Store) Reorder(ctx context.Context, kind model.Kind, ev reorder.Event) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case model.KindHabit:
		return reorderList(ctx, s, &s.habits, kind, ev)
	case model.KindTask:
		return reorderList(ctx, s, &s.tasks, kind, ev)
	case model.KindProject:
		return reorderList(ctx, s, &s.projects, kind, ev)
	}
	return nil, fmt.Errorf("reorder kind %q: %w", kind, ErrNotFound)
}

func reorderList[T identified](ctx context.Context, s *Store, list *[]T, kind model.Kind, ev reorder.Event) ([]string, error) {
	moved, err := reorder.Move(*list, func(it T) string { return it.ItemID() }, ev.Active.ID, ev.Over.ID)
	if err != nil {
		s.logger.Warn("reorder ignored",
			slog.String("kind", string(kind)),
			slog.String("active", ev.Active.ID),
			slog.String("over", ev.Over.ID),
			slog.String("error", err.Error()),
		)
		return idsOf(*list), err
	}
	ids := idsOf(moved)
	if err := s.sink.SaveOrder(ctx, kind, ids); err != nil {
		return nil, fmt.Errorf("persist %s order: %w", kind, err)
	}
	*list = moved
	return ids, nil
}

// ReorderSubtasks applies a drag event to a project's subtask list.
func (s *Store) ReorderSubtasks(ctx context.Context, projectID string, ev reorder.Event) (model.Project, error) {
	var missErr error
	p, err := s.mutateProject(ctx, projectID, func(p *model.Project) error {
		moved, err := reorder.Move(p.Subtasks, func(st model.Subtask) string { return st.ID }, ev.Active.ID, ev.Over.ID)
		if err != nil {
			missErr = err
			return err
		}
		p.Subtasks = moved
		return nil
	})
	if missErr != nil {
		s.logger.Warn("subtask reorder ignored",
			slog.String("project", projectID),
			slog.String("active", ev.Active.ID),
			slog.String("over", ev.Over.ID),
		)
		current, getErr := s.Project(projectID)
		if getErr != nil {
			return model.Project{}, getErr
		}
		return current, missErr
	}
	return p, err
}
