package task

import "gantry/internal/scale"

// Changed decides whether next differs from prev enough to need a full
// relayout. Lists of different length always differ and two empty lists
// never do. Otherwise tasks are compared index by index; dates compare as
// parsed instants and list-valued properties compare as sets.
func Changed(prev, next []Task, format string) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if taskChanged(prev[i], next[i], format) {
			return true
		}
	}
	return false
}

func taskChanged(a, b Task, format string) bool {
	switch {
	case a.ID != b.ID, a.Name != b.Name:
		return true
	case dateChanged(a.Start, b.Start, format), dateChanged(a.End, b.End, format):
		return true
	case a.Progress != b.Progress:
		return true
	case !sameBound(a.MinProgress, b.MinProgress), !sameBound(a.MaxProgress, b.MaxProgress):
		return true
	case !sameItems(a.Swimlanes, b.Swimlanes):
		return true
	case !sameItems(a.Milestones, b.Milestones):
		return true
	case !sameItems(a.Dependencies, b.Dependencies), !sameItems(a.AllowedDependencies, b.AllowedDependencies):
		return true
	case a.BarColor != b.BarColor, a.ProgressColor != b.ProgressColor, a.TextColor != b.TextColor:
		return true
	case a.Draggable != b.Draggable, a.StartDrag != b.StartDrag, a.EndDrag != b.EndDrag:
		return true
	case a.ProgressDrag != b.ProgressDrag, a.Editable != b.Editable:
		return true
	}
	return false
}

func dateChanged(a, b, format string) bool {
	da, okA := scale.ParseDate(a, format)
	db, okB := scale.ParseDate(b, format)
	if !okA && !okB {
		return a != b
	}
	if okA != okB {
		return true
	}
	return !da.Equal(db)
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// sameItems compares two lists as multisets of comparable values.
func sameItems[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[T]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}
