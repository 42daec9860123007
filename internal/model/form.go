package model

// FormData is the flat field snapshot edited in an add/edit item form.
// Fields that do not apply to the selected kind are ignored on commit.
type FormData struct {
	Title        string     `json:"title,omitempty" example:"Read a chapter"`
	Description  string     `json:"description,omitempty"`
	Difficulty   int        `json:"difficulty,omitempty" example:"2"`
	Recurrence   Recurrence `json:"recurrence,omitempty" example:"daily"`
	Due          string     `json:"due,omitempty" example:"2026-11-01"`
	Status       TaskStatus `json:"status,omitempty" example:"Pending"`
	Progress     int        `json:"progress,omitempty"`
	Countable    bool       `json:"countable,omitempty"`
	TargetCount  int        `json:"targetCount,omitempty"`
	CurrentCount int        `json:"currentCount,omitempty"`
	Streak       int        `json:"streak,omitempty"`
	Weekday      Weekday    `json:"weekday,omitempty"`
	Monthday     int        `json:"monthday,omitempty"`
	Completed    bool       `json:"completed,omitempty"`
	Subtasks     []Subtask  `json:"subtasks,omitempty"`
}

// DefaultFormData returns the field values a new form of the given kind opens with.
func DefaultFormData(kind Kind) FormData {
	return FormData{
		Difficulty:  1,
		Recurrence:  DefaultRecurrence(kind),
		Status:      StatusPending,
		TargetCount: 1,
		Weekday:     Monday,
		Monthday:    1,
	}
}

// FormDataFromRecord loads an existing item into a form snapshot.
func FormDataFromRecord(rec Record) FormData {
	switch it := rec.(type) {
	case Habit:
		return FormData{
			Title:        it.Title,
			Description:  it.Description,
			Difficulty:   it.Difficulty,
			Recurrence:   it.Recurrence,
			Countable:    it.Countable,
			TargetCount:  it.TargetCount,
			CurrentCount: it.CurrentCount,
			Streak:       it.Streak,
			Weekday:      it.Weekday,
			Monthday:     it.Monthday,
			Completed:    it.Completed,
		}
	case Task:
		return FormData{
			Title:       it.Title,
			Description: it.Description,
			Difficulty:  it.Difficulty,
			Recurrence:  it.Recurrence,
			Due:         it.Due,
			Status:      it.Status,
		}
	case Project:
		return FormData{
			Title:       it.Title,
			Description: it.Description,
			Difficulty:  it.Difficulty,
			Recurrence:  it.Recurrence,
			Due:         it.Due,
			Progress:    it.Progress,
			Subtasks:    it.Clone().Subtasks,
		}
	}
	return FormData{}
}

// Record builds the item of the given kind with the given id from the snapshot.
func (f FormData) Record(kind Kind, id string) Record {
	base := Item{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		Difficulty:  f.Difficulty,
		Recurrence:  f.Recurrence,
	}
	switch kind {
	case KindHabit:
		h := Habit{
			Item:      base,
			Streak:    f.Streak,
			Countable: f.Countable,
			Weekday:   f.Weekday,
			Monthday:  f.Monthday,
			Completed: f.Completed,
		}
		if f.Countable {
			h.TargetCount = f.TargetCount
			h.CurrentCount = f.CurrentCount
			h.Completed = false
		}
		if f.Recurrence != RecurrenceWeekly {
			h.Weekday = ""
		}
		if f.Recurrence != RecurrenceMonthly {
			h.Monthday = 0
		}
		return h
	case KindTask:
		status := f.Status
		if status == "" {
			status = StatusPending
		}
		return Task{Item: base, Due: f.Due, Status: status}
	case KindProject:
		subtasks := make([]Subtask, len(f.Subtasks))
		for i, st := range f.Subtasks {
			subtasks[i] = st.Clone()
		}
		return Project{Item: base, Due: f.Due, Subtasks: subtasks, Progress: f.Progress}
	}
	return nil
}
