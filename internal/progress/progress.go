// Package progress derives completion percentages from subtasks, checklists
// and habit counts.
package progress

import (
	"math"

	"questboard/internal/model"
)

// Percent returns round(100*done/total), or 0 when total is not positive.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// Project returns the progress of a project with the given subtasks. With no
// subtasks the stored value is kept.
func Project(subtasks []model.Subtask, stored int) int {
	if len(subtasks) == 0 {
		return stored
	}
	done := 0
	for _, st := range subtasks {
		if st.Completed {
			done++
		}
	}
	return Percent(done, len(subtasks))
}

// Checklist returns the completion percentage of a subtask's checklist.
func Checklist(items []model.ChecklistItem) int {
	done := 0
	for _, it := range items {
		if it.Completed {
			done++
		}
	}
	return Percent(done, len(items))
}

// HabitDone reports whether a habit counts as complete. Countable habits are
// complete once the count reaches the target; others use the explicit flag.
func HabitDone(h model.Habit) bool {
	if h.Countable {
		return h.TargetCount > 0 && h.CurrentCount >= h.TargetCount
	}
	return h.Completed
}

// Refresh recomputes every derived field of p.
func Refresh(p model.Project) model.Project {
	for i := range p.Subtasks {
		p.Subtasks[i].ChecklistProgress = Checklist(p.Subtasks[i].Checklist)
	}
	p.Progress = Project(p.Subtasks, p.Progress)
	return p
}
