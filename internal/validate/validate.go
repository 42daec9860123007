// Package validate holds the field rules and the HTML-escaping sanitizer applied
// to every item before it reaches the item store.
package validate

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"questboard/internal/model"
)

// Field names understood by Field and reported in Errors.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldDifficulty   = "difficulty"
	FieldProgress     = "progress"
	FieldTargetCount  = "targetCount"
	FieldCurrentCount = "currentCount"
	FieldStreak       = "streak"
	FieldMonthday     = "monthday"
	FieldDue          = "due"
	FieldRecurrence   = "recurrence"
	FieldStatus       = "status"
	FieldWeekday      = "weekday"
	FieldCountable    = "countable"
	FieldCompleted    = "completed"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
)

// Field reports whether value satisfies the rule registered for name.
// Names without a rule always pass.
func Field(name string, value any) bool {
	switch name {
	case FieldTitle:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != "" && utf8.RuneCountInString(s) <= MaxTitleLen
	case FieldDescription:
		s, ok := value.(string)
		return ok && utf8.RuneCountInString(s) <= MaxDescriptionLen
	case FieldDifficulty:
		n, ok := Int(value)
		return ok && n >= 1 && n <= 4
	case FieldProgress:
		f, ok := Number(value)
		return ok && f >= 0 && f <= 100
	case FieldTargetCount:
		n, ok := Int(value)
		return ok && n > 0
	case FieldCurrentCount, FieldStreak:
		n, ok := Int(value)
		return ok && n >= 0
	case FieldMonthday:
		n, ok := Int(value)
		return ok && n >= 1 && n <= 31
	}
	return true
}

// Number converts value to a float64. Strings are parsed; anything else
// non-numeric reports false.
func Number(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int converts value to an int, rejecting anything with a fractional part.
func Int(value any) (int, bool) {
	f, ok := Number(value)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// IntOr parses raw as an int and falls back to fallback when it is not one.
func IntOr(raw any, fallback int) int {
	if n, ok := Int(raw); ok {
		return n
	}
	return fallback
}

var htmlReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Sanitize escapes angle brackets and quotes in string values.
// Non-string values are returned unchanged.
func Sanitize(value any) any {
	if s, ok := value.(string); ok {
		return String(s)
	}
	return value
}

// String is Sanitize for a known string.
func String(s string) string {
	return htmlReplacer.Replace(s)
}

// FormData sanitizes every string-valued field of f, including nested
// subtasks and checklist items.
func FormData(f model.FormData) model.FormData {
	f.Title = String(f.Title)
	f.Description = String(f.Description)
	f.Due = String(f.Due)
	if f.Subtasks != nil {
		subtasks := make([]model.Subtask, len(f.Subtasks))
		for i, st := range f.Subtasks {
			subtasks[i] = Subtask(st)
		}
		f.Subtasks = subtasks
	}
	return f
}

// Subtask sanitizes the text fields of st and its checklist.
func Subtask(st model.Subtask) model.Subtask {
	st = st.Clone()
	st.Title = String(st.Title)
	st.Description = String(st.Description)
	st.DueDate = String(st.DueDate)
	for i := range st.Checklist {
		st.Checklist[i].Text = String(st.Checklist[i].Text)
	}
	return st
}
