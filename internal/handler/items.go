package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"questboard/internal/form"
	"questboard/internal/model"
	"questboard/internal/progress"
	"questboard/internal/reorder"
	"questboard/internal/store"
	"questboard/internal/validate"
)

// ItemHandler serves the habit, task and project collections.
type ItemHandler struct {
	store   *store.Store
	sensors reorder.Sensors
	logger  *slog.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(st *store.Store, sensors reorder.Sensors, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{store: st, sensors: sensors, logger: logger}
}

// --- Input/Output types for huma ---

type ListBody[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count" example:"3"`
}

type ListOutput[T any] struct {
	Body ListBody[T]
}

type ItemOutput[T any] struct {
	Body T
}

type ItemIDInput struct {
	ID string `path:"id" doc:"Item ID"`
}

type FormInput struct {
	Body model.FormData
}

type EditFormInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body model.FormData
}

type ReorderInput struct {
	Body reorder.Event
}

type OrderBody struct {
	IDs     []string `json:"ids"`
	Applied bool     `json:"applied" doc:"False when a stale id left the order unchanged"`
}

type OrderOutput struct {
	Body OrderBody
}

type SensorsOutput struct {
	Body reorder.Sensors
}

// HabitView is a habit plus its derived completion.
type HabitView struct {
	model.Habit
	Done bool `json:"done" doc:"Countable habits: currentCount >= targetCount; otherwise the completed flag"`
}

func viewHabit(h model.Habit) HabitView {
	return HabitView{Habit: h, Done: progress.HabitDone(h)}
}

// collection describes one item kind for route registration.
type collection[T any] struct {
	kind   model.Kind
	plural string
	list   func() []T
	view   func(model.Record) T
}

// RegisterRoutes registers all item routes with the huma API.
func (h *ItemHandler) RegisterRoutes(api huma.API) {
	registerCollection(api, h, collection[HabitView]{
		kind:   model.KindHabit,
		plural: "habits",
		list: func() []HabitView {
			habits := h.store.Habits()
			out := make([]HabitView, len(habits))
			for i, hb := range habits {
				out[i] = viewHabit(hb)
			}
			return out
		},
		view: func(rec model.Record) HabitView { return viewHabit(rec.(model.Habit)) },
	})
	registerCollection(api, h, collection[model.Task]{
		kind:   model.KindTask,
		plural: "tasks",
		list:   h.store.Tasks,
		view:   func(rec model.Record) model.Task { return rec.(model.Task) },
	})
	registerCollection(api, h, collection[model.Project]{
		kind:   model.KindProject,
		plural: "projects",
		list:   h.store.Projects,
		view:   func(rec model.Record) model.Project { return rec.(model.Project) },
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-drag-config",
		Method:      http.MethodGet,
		Path:        "/api/v1/drag-config",
		Summary:     "Get drag sensor thresholds",
		Description: "Activation constraints the UI applies before recognising a reorder gesture.",
		Tags:        []string{"reorder"},
	}, func(ctx context.Context, _ *struct{}) (*SensorsOutput, error) {
		return &SensorsOutput{Body: h.sensors}, nil
	})

	h.registerHabitRoutes(api)
	h.registerTaskRoutes(api)
	h.registerProjectRoutes(api)
}

func registerCollection[T any](api huma.API, h *ItemHandler, c collection[T]) {
	base := "/api/v1/" + c.plural
	tags := []string{c.plural}

	huma.Register(api, huma.Operation{
		OperationID: "list-" + c.plural,
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List " + c.plural,
		Description: "Retrieve all " + c.plural + " in display order.",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*ListOutput[T], error) {
		items := c.list()
		return &ListOutput[T]{Body: ListBody[T]{Items: items, Count: len(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + string(c.kind),
		Method:      http.MethodGet,
		Path:        base + "/{id}",
		Summary:     "Get a " + string(c.kind),
		Tags:        tags,
	}, func(ctx context.Context, input *ItemIDInput) (*ItemOutput[T], error) {
		rec, err := h.store.Record(c.kind, input.ID)
		if err != nil {
			return nil, h.fail("get "+string(c.kind), err)
		}
		return &ItemOutput[T]{Body: c.view(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + string(c.kind),
		Method:        http.MethodPost,
		Path:          base,
		Summary:       "Create a " + string(c.kind),
		Description:   "Validate, sanitize and append a new " + string(c.kind) + ". Unset difficulty and recurrence take the form defaults.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *FormInput) (*ItemOutput[T], error) {
		sess := form.NewSession(h.store)
		sess.Open(c.kind)
		rec, err := h.submit(ctx, sess, input.Body)
		if err != nil {
			return nil, err
		}
		return &ItemOutput[T]{Body: c.view(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + string(c.kind),
		Method:      http.MethodPut,
		Path:        base + "/{id}",
		Summary:     "Update a " + string(c.kind),
		Description: "Replace every field of an existing " + string(c.kind) + " from the submitted snapshot.",
		Tags:        tags,
	}, func(ctx context.Context, input *EditFormInput) (*ItemOutput[T], error) {
		existing, err := h.store.Record(c.kind, input.ID)
		if err != nil {
			return nil, h.fail("update "+string(c.kind), err)
		}
		sess := form.NewSession(h.store)
		sess.OpenEdit(existing)
		rec, err := h.submit(ctx, sess, input.Body)
		if err != nil {
			return nil, err
		}
		return &ItemOutput[T]{Body: c.view(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-" + string(c.kind),
		Method:        http.MethodDelete,
		Path:          base + "/{id}",
		Summary:       "Delete a " + string(c.kind),
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
		if err := h.store.Delete(ctx, c.kind, input.ID); err != nil {
			return nil, h.fail("delete "+string(c.kind), err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-" + c.plural,
		Method:      http.MethodPost,
		Path:        base + "/reorder",
		Summary:     "Reorder " + c.plural,
		Description: "Move the dragged item to the position of the item it was dropped on. Stale ids, or a gesture below the drag-config thresholds, leave the order unchanged.",
		Tags:        append(tags, "reorder"),
	}, func(ctx context.Context, input *ReorderInput) (*OrderOutput, error) {
		if !h.sensors.Accept(input.Body.Gesture) {
			return &OrderOutput{Body: OrderBody{IDs: h.store.IDs(c.kind), Applied: false}}, nil
		}
		ids, err := h.store.Reorder(ctx, c.kind, input.Body)
		if errors.Is(err, reorder.ErrIndexMiss) {
			return &OrderOutput{Body: OrderBody{IDs: ids, Applied: false}}, nil
		}
		if err != nil {
			return nil, h.fail("reorder "+c.plural, err)
		}
		return &OrderOutput{Body: OrderBody{IDs: ids, Applied: true}}, nil
	})
}

// submit runs an opened form session with the request body.
func (h *ItemHandler) submit(ctx context.Context, sess *form.Session, body model.FormData) (model.Record, error) {
	kind := sess.Kind()
	if err := sess.Fill(body); err != nil {
		return nil, h.fail("fill form", err)
	}
	rec, err := sess.Submit(ctx)
	if errors.Is(err, form.ErrRejected) {
		return nil, rejected(sess.Errors())
	}
	if err != nil {
		return nil, h.fail("submit "+string(kind), err)
	}
	return rec, nil
}

func rejected(errs validate.Errors) error {
	details := make([]error, 0, len(errs))
	for _, name := range errs.Fields() {
		details = append(details, &huma.ErrorDetail{
			Message:  "invalid value",
			Location: "body." + name,
		})
	}
	return huma.Error422UnprocessableEntity("validation failed", details...)
}

// fail maps store and form errors to HTTP errors, logging anything unexpected.
func (h *ItemHandler) fail(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, store.ErrNotToggleable):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, store.ErrEmptyText), errors.Is(err, store.ErrInvalidStatus), errors.Is(err, store.ErrInvalidValue):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	h.logger.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	return huma.Error500InternalServerError(fmt.Sprintf("%s failed", op))
}
