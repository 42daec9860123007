// Package form runs a single add/edit item form session: field edits,
// validation, sanitization and the final commit to the item store.
package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"questboard/internal/model"
	"questboard/internal/validate"
)

// State is the phase of a form session.
type State int

const (
	Closed State = iota
	New
	Editing
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Editing:
		return "editing"
	}
	return "closed"
}

var (
	ErrNotOpen      = errors.New("form is not open")
	ErrRejected     = errors.New("form has invalid fields")
	ErrTypeLocked   = errors.New("item type cannot change while editing")
	ErrUnknownField = errors.New("unknown form field")
)

// Committer receives items from successful submissions. With isUpdate the item
// replaces the one sharing its id; otherwise it is appended.
type Committer interface {
	AddItem(ctx context.Context, rec model.Record, isUpdate bool) (model.Record, error)
}

// Session holds the state of one form from open to commit or cancel.
// It is not safe for concurrent use.
type Session struct {
	committer Committer

	state      State
	kind       model.Kind
	editingID  string
	fields     model.FormData
	errors     validate.Errors
	submitting bool
}

// NewSession returns a closed session that commits to c.
func NewSession(c Committer) *Session {
	return &Session{committer: c, errors: validate.Errors{}}
}

// Open starts a new-item form of the given kind with that kind's defaults.
func (s *Session) Open(kind model.Kind) {
	s.reset()
	s.state = New
	s.kind = kind
	s.fields = model.DefaultFormData(kind)
}

// OpenEdit starts an edit form loaded from an existing item.
func (s *Session) OpenEdit(rec model.Record) {
	s.reset()
	s.state = Editing
	s.kind = rec.ItemKind()
	s.editingID = rec.ItemID()
	s.fields = validate.FormData(model.FormDataFromRecord(rec))
}

func (s *Session) reset() {
	s.state = Closed
	s.kind = ""
	s.editingID = ""
	s.fields = model.FormData{}
	s.errors = validate.Errors{}
	s.submitting = false
}

// ChangeType switches the kind of a new-item form. Kind-specific fields go back
// to the new kind's defaults and all field errors are cleared.
func (s *Session) ChangeType(kind model.Kind) error {
	switch s.state {
	case Closed:
		return ErrNotOpen
	case Editing:
		return ErrTypeLocked
	}
	defaults := model.DefaultFormData(kind)
	defaults.Title = s.fields.Title
	defaults.Description = s.fields.Description
	defaults.Difficulty = s.fields.Difficulty
	s.kind = kind
	s.fields = defaults
	s.errors = validate.Errors{}
	return nil
}

// ChangeField sets one field from raw input. Numeric fields that fail to
// parse fall back to the field's floor. Any error on the field is cleared.
func (s *Session) ChangeField(name string, value any) error {
	if s.state == Closed {
		return ErrNotOpen
	}
	f := &s.fields
	switch name {
	case validate.FieldTitle:
		f.Title = text(value)
	case validate.FieldDescription:
		f.Description = text(value)
	case validate.FieldDue:
		f.Due = text(value)
	case validate.FieldRecurrence:
		f.Recurrence = model.Recurrence(text(value))
	case validate.FieldStatus:
		f.Status = model.TaskStatus(text(value))
	case validate.FieldWeekday:
		f.Weekday = model.Weekday(text(value))
	case validate.FieldDifficulty:
		f.Difficulty = validate.IntOr(value, 1)
	case validate.FieldProgress:
		if n, ok := validate.Number(value); ok {
			f.Progress = int(math.Round(n))
		} else {
			f.Progress = 0
		}
	case validate.FieldTargetCount:
		f.TargetCount = validate.IntOr(value, 1)
	case validate.FieldCurrentCount:
		f.CurrentCount = validate.IntOr(value, 0)
	case validate.FieldStreak:
		f.Streak = validate.IntOr(value, 0)
	case validate.FieldMonthday:
		f.Monthday = validate.IntOr(value, 1)
	case validate.FieldCountable:
		f.Countable = flag(value)
	case validate.FieldCompleted:
		f.Completed = flag(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	delete(s.errors, name)
	return nil
}

// Fill replaces every field with the given snapshot. Unset difficulty,
// recurrence, status, target count, weekday and monthday keep their current
// values, as does a nil subtask list (an empty one clears it).
func (s *Session) Fill(data model.FormData) error {
	if s.state == Closed {
		return ErrNotOpen
	}
	if data.Subtasks == nil {
		data.Subtasks = s.fields.Subtasks
	}
	if data.Difficulty == 0 {
		data.Difficulty = s.fields.Difficulty
	}
	if data.Recurrence == "" {
		data.Recurrence = s.fields.Recurrence
	}
	if data.Status == "" {
		data.Status = s.fields.Status
	}
	if data.TargetCount == 0 {
		data.TargetCount = s.fields.TargetCount
	}
	if data.Weekday == "" {
		data.Weekday = s.fields.Weekday
	}
	if data.Monthday == 0 {
		data.Monthday = s.fields.Monthday
	}
	s.fields = data
	return nil
}

// Submit validates the form and, when it is valid, commits the sanitized item
// and closes the session. A rejected form stays open with Errors populated and
// nothing is committed.
func (s *Session) Submit(ctx context.Context) (model.Record, error) {
	if s.state == Closed {
		return nil, ErrNotOpen
	}
	isEdit := s.state == Editing

	result := validate.Form(s.fields, s.kind, isEdit)
	if !result.Valid {
		s.errors = result.Errors
		return nil, fmt.Errorf("%w: %s", ErrRejected, strings.Join(result.Errors.Fields(), ", "))
	}

	s.submitting = true
	rec := validate.FormData(s.fields).Record(s.kind, s.editingID)
	stored, err := s.committer.AddItem(ctx, rec, isEdit)
	s.submitting = false
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", s.kind, err)
	}

	s.reset()
	return stored, nil
}

// Cancel discards the session without touching the store.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) State() State { return s.state }
func (s *Session) Kind() model.Kind { return s.kind }
func (s *Session) EditingID() string { return s.editingID }
func (s *Session) Fields() model.FormData { return s.fields }
func (s *Session) Submitting() bool { return s.submitting }

// Errors returns a copy of the current field errors.
func (s *Session) Errors() validate.Errors {
	out := make(validate.Errors, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func text(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func flag(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b || strings.EqualFold(strings.TrimSpace(v), "on")
	}
	return false
}
