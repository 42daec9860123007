package validate

import (
	"sort"
	"strings"

	"questboard/internal/model"
)

// Errors maps each failing field name to true.
type Errors map[string]bool

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of validating a whole form.
type Result struct {
	Errors Errors
	Valid  bool
}

// Form applies the field rules that are relevant for the given kind and mode.
func Form(f model.FormData, kind model.Kind, isEdit bool) Result {
	errs := Errors{}
	check := func(name string, value any) {
		if !Field(name, value) {
			errs[name] = true
		}
	}

	check(FieldTitle, f.Title)
	if f.Description != "" {
		check(FieldDescription, f.Description)
	}
	check(FieldDifficulty, f.Difficulty)

	if kind == model.KindProject {
		check(FieldProgress, f.Progress)
	}
	if kind == model.KindHabit {
		if f.Countable {
			check(FieldTargetCount, f.TargetCount)
			if isEdit {
				check(FieldCurrentCount, f.CurrentCount)
			}
		}
		if isEdit {
			check(FieldStreak, f.Streak)
		}
	}
	if f.Recurrence == model.RecurrenceMonthly {
		check(FieldMonthday, f.Monthday)
	}
	if kind == model.KindProject && f.Recurrence == model.RecurrenceOneTime && strings.TrimSpace(f.Due) == "" {
		errs[FieldDue] = true
	}

	// Enumerated fields must hold a member of the kind's domain.
	domain := model.TaskRecurrences
	if kind == model.KindHabit {
		domain = model.HabitRecurrences
	}
	if !domain[f.Recurrence] {
		errs[FieldRecurrence] = true
	}
	if kind == model.KindTask && f.Status != "" && !model.ValidStatuses[f.Status] {
		errs[FieldStatus] = true
	}
	if kind == model.KindHabit && f.Recurrence == model.RecurrenceWeekly && !model.ValidWeekdays[f.Weekday] {
		errs[FieldWeekday] = true
	}

	return Result{Errors: errs, Valid: len(errs) == 0}
}
