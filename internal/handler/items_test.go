package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"

	"questboard/internal/idgen"
	"questboard/internal/logger"
	"questboard/internal/model"
	"questboard/internal/reorder"
	"questboard/internal/store"
)

// memRepo records write-through calls in place of the database.
type memRepo struct {
	mu     sync.Mutex
	items  map[string]model.Record
	orders map[model.Kind][]string
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]model.Record{}, orders: map[model.Kind][]string{}}
}

func (m *memRepo) Upsert(_ context.Context, rec model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[string(rec.ItemKind())+"/"+rec.ItemID()] = rec
	return nil
}

func (m *memRepo) Delete(_ context.Context, kind model.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, string(kind)+"/"+id)
	return nil
}

func (m *memRepo) SaveOrder(_ context.Context, kind model.Kind, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[kind] = append([]string(nil), ids...)
	return nil
}

// flakyRepo is a memRepo that can be switched to fail.
type flakyRepo struct {
	*memRepo
	fail bool
}

func (f *flakyRepo) Upsert(ctx context.Context, rec model.Record) error {
	if f.fail {
		return errors.New("connection reset")
	}
	return f.memRepo.Upsert(ctx, rec)
}

func (f *flakyRepo) Delete(ctx context.Context, kind model.Kind, id string) error {
	if f.fail {
		return errors.New("connection reset")
	}
	return f.memRepo.Delete(ctx, kind, id)
}

func (m *memRepo) get(kind model.Kind, id string) (model.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items[string(kind)+"/"+id]
	return rec, ok
}

// failRepo rejects every write.
type failRepo struct{ err error }

func (f failRepo) Upsert(context.Context, model.Record) error { return f.err }
func (f failRepo) Delete(context.Context, model.Kind, string) error { return f.err }
func (f failRepo) SaveOrder(context.Context, model.Kind, []string) error { return f.err }

func setup(t *testing.T) (humatest.TestAPI, *store.Store, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	api, st := setupWithSink(t, repo)
	return api, st, repo
}

func setupWithSink(t *testing.T, sink store.Sink) (humatest.TestAPI, *store.Store) {
	t.Helper()
	_, api := humatest.New(t)
	st := store.New(idgen.NewCounter("id-"), logger.Discard(), store.WithSink(sink))
	NewItemHandler(st, reorder.DefaultSensors(), logger.Discard()).RegisterRoutes(api)
	return api, st
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	return v
}

type problem struct {
	Status int `json:"status"`
	Errors []struct {
		Location string `json:"location"`
	} `json:"errors"`
}

func TestCreateHabitAppliesDefaults(t *testing.T) {
	api, _, repo := setup(t)

	resp := api.Post("/api/v1/habits", map[string]any{"title": "Read <b>daily</b>"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	h := decode[HabitView](t, resp)
	if h.ID == "" || h.Recurrence != model.RecurrenceDaily || h.Difficulty != 1 {
		t.Fatalf("habit = %+v", h)
	}
	if h.Title != "Read &lt;b&gt;daily&lt;/b&gt;" {
		t.Fatalf("title not sanitized: %q", h.Title)
	}
	if _, ok := repo.get(model.KindHabit, h.ID); !ok {
		t.Fatal("habit not persisted")
	}
}

func TestCreateCountableHabitDefaultsTarget(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Post("/api/v1/habits", map[string]any{"title": "Water", "countable": true})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	if h := decode[HabitView](t, resp); h.TargetCount != 1 || h.Done {
		t.Fatalf("habit = %+v", h)
	}

	resp = api.Post("/api/v1/habits", map[string]any{"title": "Gym", "recurrence": "weekly"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("weekly status = %d: %s", resp.Code, resp.Body.String())
	}
	if h := decode[HabitView](t, resp); h.Weekday != model.Monday {
		t.Fatalf("weekday = %q, want monday", h.Weekday)
	}
}

func TestCreateProjectWithoutDueRejected(t *testing.T) {
	api, st, repo := setup(t)

	resp := api.Post("/api/v1/projects", map[string]any{"title": "Launch"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	p := decode[problem](t, resp)
	var locations []string
	for _, e := range p.Errors {
		locations = append(locations, e.Location)
	}
	if !slices.Contains(locations, "body.due") {
		t.Fatalf("error locations = %v", locations)
	}
	if len(st.Projects()) != 0 || len(repo.items) != 0 {
		t.Fatal("rejected project was committed")
	}
}

func TestCreateProjectDerivesProgress(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Post("/api/v1/projects", map[string]any{
		"title": "Launch",
		"due":   "2026-12-01",
		"subtasks": []map[string]any{
			{"title": "a", "completed": true},
			{"title": "b"},
			{"title": "c", "completed": true},
		},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	p := decode[model.Project](t, resp)
	if p.Progress != 67 {
		t.Fatalf("progress = %d, want 67", p.Progress)
	}
	for _, st := range p.Subtasks {
		if st.ID == "" {
			t.Fatalf("subtask without id: %+v", st)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	api, st, repo := setup(t)
	rec, _ := st.AddItem(t.Context(), model.Task{Item: model.Item{Title: "old", Difficulty: 2, Recurrence: model.RecurrenceOneTime}}, false)

	resp := api.Put("/api/v1/tasks/"+rec.ItemID(), map[string]any{"title": "new", "status": "Completed"})
	if resp.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", resp.Code, resp.Body.String())
	}
	task := decode[model.Task](t, resp)
	if task.ID != rec.ItemID() || task.Title != "new" || task.Status != model.StatusCompleted || task.Difficulty != 2 {
		t.Fatalf("task = %+v", task)
	}

	if resp := api.Put("/api/v1/tasks/missing", map[string]any{"title": "x"}); resp.Code != http.StatusNotFound {
		t.Fatalf("update missing status = %d", resp.Code)
	}

	if resp := api.Delete("/api/v1/tasks/" + rec.ItemID()); resp.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.Code)
	}
	if _, ok := repo.get(model.KindTask, rec.ItemID()); ok {
		t.Fatal("delete not persisted")
	}
	if resp := api.Get("/api/v1/tasks/" + rec.ItemID()); resp.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", resp.Code)
	}
}

func TestListInDisplayOrder(t *testing.T) {
	api, st, _ := setup(t)
	for _, title := range []string{"a", "b", "c"} {
		st.AddItem(t.Context(), model.Task{Item: model.Item{Title: title}}, false)
	}

	resp := api.Get("/api/v1/tasks")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	list := decode[ListBody[model.Task]](t, resp)
	if list.Count != 3 || list.Items[0].Title != "a" || list.Items[2].Title != "c" {
		t.Fatalf("list = %+v", list)
	}
}

func TestReorderEndpoint(t *testing.T) {
	api, st, repo := setup(t)
	for _, title := range []string{"a", "b", "c"} {
		st.AddItem(t.Context(), model.Habit{Item: model.Item{Title: title}}, false)
	}

	resp := api.Post("/api/v1/habits/reorder", map[string]any{
		"active": map[string]string{"id": "id-1"},
		"over":   map[string]string{"id": "id-3"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	body := decode[OrderBody](t, resp)
	want := []string{"id-2", "id-3", "id-1"}
	if !body.Applied || !slices.Equal(body.IDs, want) {
		t.Fatalf("order = %+v", body)
	}
	if !slices.Equal(repo.orders[model.KindHabit], want) {
		t.Fatalf("persisted order = %v", repo.orders[model.KindHabit])
	}

	resp = api.Post("/api/v1/habits/reorder", map[string]any{
		"active": map[string]string{"id": "gone"},
		"over":   map[string]string{"id": "id-1"},
	})
	body = decode[OrderBody](t, resp)
	if resp.Code != http.StatusOK || body.Applied || !slices.Equal(body.IDs, want) {
		t.Fatalf("stale reorder: %d %+v", resp.Code, body)
	}
}

func TestReorderIgnoresClickGesture(t *testing.T) {
	api, st, repo := setup(t)
	for _, title := range []string{"a", "b", "c"} {
		st.AddItem(t.Context(), model.Task{Item: model.Item{Title: title}}, false)
	}

	resp := api.Post("/api/v1/tasks/reorder", map[string]any{
		"active":  map[string]string{"id": "id-1"},
		"over":    map[string]string{"id": "id-3"},
		"gesture": map[string]any{"pointer": "mouse", "delta": map[string]float64{"x": 2, "y": 3}},
	})
	body := decode[OrderBody](t, resp)
	if resp.Code != http.StatusOK || body.Applied || !slices.Equal(body.IDs, []string{"id-1", "id-2", "id-3"}) {
		t.Fatalf("click reorder: %d %+v", resp.Code, body)
	}
	if _, ok := repo.orders[model.KindTask]; ok {
		t.Fatal("click gesture saved an order")
	}

	resp = api.Post("/api/v1/tasks/reorder", map[string]any{
		"active":  map[string]string{"id": "id-1"},
		"over":    map[string]string{"id": "id-3"},
		"gesture": map[string]any{"pointer": "touch", "heldMs": 400, "delta": map[string]float64{"x": 1, "y": 2}},
	})
	body = decode[OrderBody](t, resp)
	if !body.Applied || !slices.Equal(body.IDs, []string{"id-2", "id-3", "id-1"}) {
		t.Fatalf("touch reorder: %d %+v", resp.Code, body)
	}
}

func TestFailedWriteLeavesStoreUnchanged(t *testing.T) {
	api, st := setupWithSink(t, failRepo{err: errors.New("disk full")})

	resp := api.Post("/api/v1/tasks", map[string]any{"title": "x"})
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("create status = %d: %s", resp.Code, resp.Body.String())
	}
	if n := len(st.Tasks()); n != 0 {
		t.Fatalf("store kept %d tasks after failed write", n)
	}
}

func TestFailedWriteKeepsPreviousState(t *testing.T) {
	repo := &flakyRepo{memRepo: newMemRepo()}
	api, st := setupWithSink(t, repo)
	rec, err := st.AddItem(t.Context(), model.Habit{Item: model.Item{Title: "Water"}, Countable: true, TargetCount: 3}, false)
	if err != nil {
		t.Fatal(err)
	}
	repo.fail = true

	if resp := api.Put("/api/v1/habits/"+rec.ItemID()+"/count", map[string]any{"count": 2}); resp.Code != http.StatusInternalServerError {
		t.Fatalf("count status = %d", resp.Code)
	}
	if resp := api.Delete("/api/v1/habits/" + rec.ItemID()); resp.Code != http.StatusInternalServerError {
		t.Fatalf("delete status = %d", resp.Code)
	}
	h, err := st.Habit(rec.ItemID())
	if err != nil || h.CurrentCount != 0 {
		t.Fatalf("habit after failed writes = %+v, %v", h, err)
	}
}

func TestHabitCountAndToggle(t *testing.T) {
	api, st, _ := setup(t)
	counted, _ := st.AddItem(t.Context(), model.Habit{Item: model.Item{Title: "Water"}, Countable: true, TargetCount: 2}, false)
	plain, _ := st.AddItem(t.Context(), model.Habit{Item: model.Item{Title: "Meditate"}}, false)

	resp := api.Put("/api/v1/habits/"+counted.ItemID()+"/count", map[string]any{"count": 2})
	if resp.Code != http.StatusOK {
		t.Fatalf("count status = %d: %s", resp.Code, resp.Body.String())
	}
	if h := decode[HabitView](t, resp); !h.Done || h.CurrentCount != 2 {
		t.Fatalf("habit = %+v", h)
	}

	resp = api.Put("/api/v1/habits/"+counted.ItemID()+"/count", map[string]any{"count": -4})
	if h := decode[HabitView](t, resp); h.Done || h.CurrentCount != 0 {
		t.Fatalf("negative count not clamped: %+v", h)
	}

	if resp := api.Post("/api/v1/habits/" + counted.ItemID() + "/toggle"); resp.Code != http.StatusConflict {
		t.Fatalf("toggle countable status = %d", resp.Code)
	}
	resp = api.Post("/api/v1/habits/" + plain.ItemID() + "/toggle")
	if h := decode[HabitView](t, resp); resp.Code != http.StatusOK || !h.Done {
		t.Fatalf("toggle plain: %d %+v", resp.Code, h)
	}
}

func TestTaskStatusEndpoint(t *testing.T) {
	api, st, _ := setup(t)
	rec, _ := st.AddItem(t.Context(), model.Task{Item: model.Item{Title: "t"}}, false)

	resp := api.Put("/api/v1/tasks/"+rec.ItemID()+"/status", map[string]any{"status": "In Progress"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.Code, resp.Body.String())
	}
	if task := decode[model.Task](t, resp); task.Status != model.StatusInProgress {
		t.Fatalf("task = %+v", task)
	}

	resp = api.Put("/api/v1/tasks/"+rec.ItemID()+"/status", map[string]any{"status": "Paused"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status code = %d", resp.Code)
	}
}

func TestDragConfig(t *testing.T) {
	api, _, _ := setup(t)
	resp := api.Get("/api/v1/drag-config")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if s := decode[reorder.Sensors](t, resp); s != reorder.DefaultSensors() {
		t.Fatalf("sensors = %+v", s)
	}
}
