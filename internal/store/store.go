package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"questboard/internal/db"
	"questboard/internal/idgen"
	"questboard/internal/model"
	"questboard/internal/progress"
	"questboard/internal/validate"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrEmptyText     = errors.New("text must not be empty")
	ErrNotToggleable = errors.New("countable habits complete by count")
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidValue  = errors.New("value outside its allowed set")
)

// Sink receives every change before the store applies it. A failing Sink
// leaves the store unchanged.
type Sink interface {
	Upsert(ctx context.Context, rec model.Record) error
	Delete(ctx context.Context, kind model.Kind, id string) error
	SaveOrder(ctx context.Context, kind model.Kind, ids []string) error
}

type memoryOnly struct{}

func (memoryOnly) Upsert(context.Context, model.Record) error { return nil }
func (memoryOnly) Delete(context.Context, model.Kind, string) error { return nil }
func (memoryOnly) SaveOrder(context.Context, model.Kind, []string) error { return nil }

// Option configures a Store.
type Option func(*Store)

// WithSink writes every change through to sink, e.g. a *db.Repository.
func WithSink(sink Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// Store holds the ordered habit, task and project collections and keeps every
// derived field current. All methods are safe for concurrent use and return
// copies that do not alias the store's state. Changes are written to the sink
// while the store is locked, so the sink sees them in commit order.
type Store struct {
	mu       sync.RWMutex
	habits   []model.Habit
	tasks    []model.Task
	projects []model.Project

	ids    idgen.Generator
	sink   Sink
	logger *slog.Logger
}

// New creates an empty Store. Without WithSink it keeps state in memory only.
func New(ids idgen.Generator, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{ids: ids, sink: memoryOnly{}, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces every collection, e.g. with rows read back from the database.
// Nothing is written to the sink.
func (s *Store) Load(habits []model.Habit, tasks []model.Task, projects []model.Project) {
	ps := make([]model.Project, len(projects))
	for i, p := range projects {
		ps[i] = progress.Refresh(p.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = append([]model.Habit(nil), habits...)
	s.tasks = append([]model.Task(nil), tasks...)
	s.projects = ps
}

func (s *Store) Habits() []model.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Habit{}, s.habits...)
}

func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task{}, s.tasks...)
}

func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.Clone()
	}
	return out
}

// Habit returns the habit with the given id.
func (s *Store) Habit(id string) (model.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.habits, id)
	if i < 0 {
		return model.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return s.habits[i], nil
}

// Task returns the task with the given id.
func (s *Store) Task(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return s.tasks[i], nil
}

// Project returns the project with the given id.
func (s *Store) Project(id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.projects, id)
	if i < 0 {
		return model.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return s.projects[i].Clone(), nil
}

// Record returns the item of the given kind and id.
func (s *Store) Record(kind model.Kind, id string) (model.Record, error) {
	switch kind {
	case model.KindHabit:
		return s.Habit(id)
	case model.KindTask:
		return s.Task(id)
	case model.KindProject:
		return s.Project(id)
	}
	return nil, fmt.Errorf("kind %q: %w", kind, ErrNotFound)
}

// IDs returns the ids of a collection in display order.
func (s *Store) IDs(kind model.Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case model.KindHabit:
		return idsOf(s.habits)
	case model.KindTask:
		return idsOf(s.tasks)
	case model.KindProject:
		return idsOf(s.projects)
	}
	return nil
}

// AddItem commits a submitted item. With isUpdate the item replaces the one
// with the same id in place; otherwise it is appended, receiving a fresh id if
// it has none. String fields are sanitized, enumerated fields checked and
// derived fields recomputed before the item is stored. The stored item is
// returned.
func (s *Store) AddItem(ctx context.Context, rec model.Record, isUpdate bool) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch it := rec.(type) {
	case model.Habit:
		item, err := s.prepare(it.Item, model.KindHabit, isUpdate)
		if err != nil {
			return nil, err
		}
		it.Item = item
		if it.Weekday != "" && !model.ValidWeekdays[it.Weekday] {
			return nil, fmt.Errorf("weekday %q: %w", it.Weekday, ErrInvalidValue)
		}
		it.CurrentCount = max(it.CurrentCount, 0)
		if err := put(ctx, s, &s.habits, it, isUpdate); err != nil {
			return nil, err
		}
		return it, nil
	case model.Task:
		item, err := s.prepare(it.Item, model.KindTask, isUpdate)
		if err != nil {
			return nil, err
		}
		it.Item = item
		it.Due = validate.String(it.Due)
		if it.Status == "" {
			it.Status = model.StatusPending
		}
		if !model.ValidStatuses[it.Status] {
			return nil, fmt.Errorf("task status %q: %w", it.Status, ErrInvalidStatus)
		}
		if err := put(ctx, s, &s.tasks, it, isUpdate); err != nil {
			return nil, err
		}
		return it, nil
	case model.Project:
		it = it.Clone()
		item, err := s.prepare(it.Item, model.KindProject, isUpdate)
		if err != nil {
			return nil, err
		}
		it.Item = item
		it.Due = validate.String(it.Due)
		for i, st := range it.Subtasks {
			st = validate.Subtask(st)
			if st.ID == "" {
				st.ID = s.ids.NewID()
			}
			for j := range st.Checklist {
				if st.Checklist[j].ID == "" {
					st.Checklist[j].ID = s.ids.NewID()
				}
			}
			it.Subtasks[i] = st
		}
		it = progress.Refresh(it)
		if err := put(ctx, s, &s.projects, it, isUpdate); err != nil {
			return nil, err
		}
		return it.Clone(), nil
	}
	return nil, fmt.Errorf("add item of type %T: %w", rec, ErrNotFound)
}

// prepare assigns an id, sanitizes the shared text fields and checks the
// recurrence against the kind's domain. An empty recurrence takes the kind's default.
func (s *Store) prepare(it model.Item, kind model.Kind, isUpdate bool) (model.Item, error) {
	if it.Recurrence == "" {
		it.Recurrence = model.DefaultRecurrence(kind)
	}
	domain := model.TaskRecurrences
	if kind == model.KindHabit {
		domain = model.HabitRecurrences
	}
	if !domain[it.Recurrence] {
		return it, fmt.Errorf("%s recurrence %q: %w", kind, it.Recurrence, ErrInvalidValue)
	}
	if it.ID == "" && !isUpdate {
		it.ID = s.ids.NewID()
	}
	it.Title = validate.String(it.Title)
	it.Description = validate.String(it.Description)
	return it, nil
}

// Delete removes the item of the given kind and id.
func (s *Store) Delete(ctx context.Context, kind model.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case model.KindHabit:
		return drop(ctx, s, &s.habits, kind, id)
	case model.KindTask:
		return drop(ctx, s, &s.tasks, kind, id)
	case model.KindProject:
		return drop(ctx, s, &s.projects, kind, id)
	}
	return fmt.Errorf("delete %s %s: %w", kind, id, ErrNotFound)
}

// UpdateCount sets a habit's current count, clamping negative values to zero.
func (s *Store) UpdateCount(ctx context.Context, id string, count int) (model.Habit, error) {
	return s.mutateHabit(ctx, id, func(h *model.Habit) error {
		h.CurrentCount = max(count, 0)
		return nil
	})
}

// ToggleHabit flips the explicit completion flag of a non-countable habit.
func (s *Store) ToggleHabit(ctx context.Context, id string) (model.Habit, error) {
	return s.mutateHabit(ctx, id, func(h *model.Habit) error {
		if h.Countable {
			return fmt.Errorf("toggle habit %s: %w", id, ErrNotToggleable)
		}
		h.Completed = !h.Completed
		return nil
	})
}

// SetTaskStatus moves a task to the given status.
func (s *Store) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (model.Task, error) {
	if !model.ValidStatuses[status] {
		return model.Task{}, fmt.Errorf("task status %q: %w", status, ErrInvalidStatus)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	task := s.tasks[i]
	task.Status = status
	if err := s.sink.Upsert(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("persist task %s: %w", id, err)
	}
	s.tasks[i] = task
	return task, nil
}

func (s *Store) mutateHabit(ctx context.Context, id string, fn func(*model.Habit) error) (model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.habits, id)
	if i < 0 {
		return model.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	h := s.habits[i]
	if err := fn(&h); err != nil {
		return model.Habit{}, err
	}
	if err := s.sink.Upsert(ctx, h); err != nil {
		return model.Habit{}, fmt.Errorf("persist habit %s: %w", id, err)
	}
	s.habits[i] = h
	return h, nil
}

type identified interface {
	ItemID() string
}

func indexOf[T identified](list []T, id string) int {
	for i, it := range list {
		if it.ItemID() == id {
			return i
		}
	}
	return -1
}

func idsOf[T identified](list []T) []string {
	ids := make([]string, len(list))
	for i, it := range list {
		ids[i] = it.ItemID()
	}
	return ids
}

// commit returns list with it replaced or appended. list itself is not modified.
func commit[T identified](list []T, it T, isUpdate bool) ([]T, error) {
	i := indexOf(list, it.ItemID())
	if isUpdate {
		if i < 0 {
			return nil, fmt.Errorf("update %s: %w", it.ItemID(), ErrNotFound)
		}
		out := slices.Clone(list)
		out[i] = it
		return out, nil
	}
	if i >= 0 {
		return nil, fmt.Errorf("add %s: %w", it.ItemID(), ErrDuplicateID)
	}
	return append(list[:len(list):len(list)], it), nil
}

func remove[T identified](list []T, id string) ([]T, bool) {
	i := indexOf(list, id)
	if i < 0 {
		return list, false
	}
	return append(list[:i:i], list[i+1:]...), true
}

// put writes it through the sink and, only if that succeeds, into *list.
func put[T model.Record](ctx context.Context, s *Store, list *[]T, it T, isUpdate bool) error {
	next, err := commit(*list, it, isUpdate)
	if err != nil {
		return err
	}
	if err := s.sink.Upsert(ctx, it); err != nil {
		return fmt.Errorf("persist %s %s: %w", it.ItemKind(), it.ItemID(), err)
	}
	*list = next
	return nil
}

func drop[T identified](ctx context.Context, s *Store, list *[]T, kind model.Kind, id string) error {
	next, ok := remove(*list, id)
	if !ok {
		return fmt.Errorf("delete %s %s: %w", kind, id, ErrNotFound)
	}
	// A row that never reached the sink is already gone.
	if err := s.sink.Delete(ctx, kind, id); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("persist delete %s %s: %w", kind, id, err)
	}
	*list = next
	return nil
}
