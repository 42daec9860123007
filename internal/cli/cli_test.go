package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"questboard/internal/db"
	"questboard/internal/handler"
	"questboard/internal/idgen"
	"questboard/internal/logger"
	"questboard/internal/model"
	"questboard/internal/reorder"
	"questboard/internal/store"
)

func TestRouterServesHealthAndAPI(t *testing.T) {
	log := logger.Discard()
	repo, err := db.New("sqlite", ":memory:", log)
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	st := store.New(idgen.NewCounter("id-"), log, store.WithSink(repo))
	router, _ := NewRouter(handler.NewItemHandler(st, reorder.DefaultSensors(), log), log, []string{"*"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}

	body := strings.NewReader(`{"title":"Stretch"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", body)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create habit: %d %s", rec.Code, rec.Body.String())
	}

	snap, err := repo.Load(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Habits) != 1 || snap.Habits[0].Title != "Stretch" {
		t.Fatalf("habit not written through: %+v", snap)
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("QUESTBOARD_LOG_DIR", t.TempDir())
	t.Setenv("QUESTBOARD_LOG_DEV", "false")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("QUESTBOARD_DATABASE_DSN", filepath.Join(t.TempDir(), "qb.db"))
	out, err := runCmd(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "schema version 1") {
		t.Fatalf("output = %q", out)
	}
}

func TestReorderCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "qb.db")
	t.Setenv("QUESTBOARD_DATABASE_DSN", dsn)

	repo, err := db.New("sqlite", dsn, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(idgen.NewCounter("t"), logger.Discard(), store.WithSink(repo))
	for _, title := range []string{"a", "b", "c"} {
		st.AddItem(t.Context(), model.Task{Item: model.Item{Title: title}}, false)
	}
	repo.Close()

	out, err := runCmd(t, "reorder", "task", "t3", "t1")
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "t3,t1,t2" {
		t.Fatalf("output = %q", out)
	}

	if _, err := runCmd(t, "reorder", "task", "nope", "t1"); err == nil {
		t.Fatal("expected error for stale id")
	}
	if _, err := runCmd(t, "reorder", "chore", "a", "b"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestShowCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "qb.db")
	t.Setenv("QUESTBOARD_DATABASE_DSN", dsn)

	repo, err := db.New("sqlite", dsn, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(idgen.NewCounter("p"), logger.Discard(), store.WithSink(repo))
	_, err = st.AddItem(t.Context(), model.Project{
		Item:     model.Item{Title: "Garden"},
		Due:      "2026-05-01",
		Subtasks: []model.Subtask{{Title: "dig", Completed: true}, {Title: "plant"}},
	}, false)
	repo.Close()
	if err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "show", "project", "p1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, `"title": "Garden"`) || !strings.Contains(out, `"progress": 50`) {
		t.Fatalf("output = %q", out)
	}

	if _, err := runCmd(t, "show", "project", "missing"); err == nil {
		t.Fatal("expected error for missing id")
	}
	if _, err := runCmd(t, "show", "chore", "p1"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
