package model

// Kind identifies the collection an item lives in.
type Kind string

const (
	KindHabit   Kind = "habit"
	KindTask    Kind = "task"
	KindProject Kind = "project"
)

// ValidKinds contains all valid item kinds.
var ValidKinds = map[Kind]bool{
	KindHabit:   true,
	KindTask:    true,
	KindProject: true,
}

// Recurrence describes how often an item comes due.
type Recurrence string

const (
	RecurrenceOneTime   Recurrence = "one-time"
	RecurrenceRecurring Recurrence = "recurring"
	RecurrenceDaily     Recurrence = "daily"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
)

// HabitRecurrences is the recurrence domain for habits.
var HabitRecurrences = map[Recurrence]bool{
	RecurrenceDaily:   true,
	RecurrenceWeekly:  true,
	RecurrenceMonthly: true,
}

// TaskRecurrences is the recurrence domain for tasks and projects.
var TaskRecurrences = map[Recurrence]bool{
	RecurrenceOneTime:   true,
	RecurrenceRecurring: true,
	RecurrenceDaily:     true,
	RecurrenceWeekly:    true,
	RecurrenceMonthly:   true,
}

// DefaultRecurrence returns the recurrence a fresh form of the given kind starts with.
func DefaultRecurrence(kind Kind) Recurrence {
	if kind == KindHabit {
		return RecurrenceDaily
	}
	return RecurrenceOneTime
}

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// ValidStatuses contains all valid task status values.
var ValidStatuses = map[TaskStatus]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// Weekday is the day a weekly habit comes due.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// ValidWeekdays contains all valid weekday values.
var ValidWeekdays = map[Weekday]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

// Record is implemented by every storable item.
type Record interface {
	ItemID() string
	ItemKind() Kind
}

// Item holds the fields shared by habits, tasks and projects.
type Item struct {
	ID          string     `json:"id" example:"3f1c9a52-2b8e-4d0e-9c53-6a3b1f0d2e11"`
	Title       string     `json:"title" example:"Morning run"`
	Description string     `json:"description,omitempty" example:"5km around the park"`
	Difficulty  int        `json:"difficulty" example:"2" minimum:"1" maximum:"4"`
	Recurrence  Recurrence `json:"recurrence" example:"daily"`
}

func (i Item) ItemID() string { return i.ID }

// Habit is a recurring item tracked by streak and, optionally, a count.
type Habit struct {
	Item
	Streak       int     `json:"streak" example:"4"`
	Countable    bool    `json:"countable"`
	TargetCount  int     `json:"targetCount,omitempty" example:"8"`
	CurrentCount int     `json:"currentCount,omitempty" example:"3"`
	Weekday      Weekday `json:"weekday,omitempty" example:"monday"`
	Monthday     int     `json:"monthday,omitempty" example:"15"`
	// Completed is only meaningful for non-countable habits.
	Completed bool `json:"completed"`
}

func (Habit) ItemKind() Kind { return KindHabit }

// Task is a single or recurring item tracked by status.
type Task struct {
	Item
	Due    string     `json:"due,omitempty" example:"2026-11-01"`
	Status TaskStatus `json:"status" example:"Pending"`
}

func (Task) ItemKind() Kind { return KindTask }

// Project is an item broken down into subtasks whose completion drives Progress.
type Project struct {
	Item
	Due      string    `json:"due,omitempty" example:"2026-12-31"`
	Subtasks []Subtask `json:"subtasks"`
	Progress int       `json:"progress" example:"67" minimum:"0" maximum:"100"`
}

func (Project) ItemKind() Kind { return KindProject }

// Clone returns a copy of p that shares no slices with it.
func (p Project) Clone() Project {
	out := p
	out.Subtasks = make([]Subtask, len(p.Subtasks))
	for i, st := range p.Subtasks {
		out.Subtasks[i] = st.Clone()
	}
	return out
}

// Subtask is a unit of work inside a project.
type Subtask struct {
	ID          string          `json:"id" required:"false"`
	Title       string          `json:"title" example:"Draft outline"`
	Description string          `json:"description,omitempty"`
	DueDate     string          `json:"dueDate,omitempty" example:"2026-11-15"`
	Completed   bool            `json:"completed" required:"false"`
	Checklist   []ChecklistItem `json:"checklist" required:"false"`
	// ChecklistProgress is derived from Checklist and only used for display.
	ChecklistProgress int `json:"checklistProgress" required:"false" minimum:"0" maximum:"100"`
}

// Clone returns a copy of st with its own checklist slice.
func (st Subtask) Clone() Subtask {
	out := st
	out.Checklist = append([]ChecklistItem{}, st.Checklist...)
	return out
}

// ChecklistItem is the smallest trackable unit within a subtask.
type ChecklistItem struct {
	ID        string `json:"id" required:"false"`
	Text      string `json:"text" example:"Collect references"`
	Completed bool   `json:"completed" required:"false"`
}
