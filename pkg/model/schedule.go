package model

import "slices"

// Schedule is the festival organization: each row is a day and each column a room, so schedule[d][r] is the film
// projected on day d in room r
type Schedule [][]int

// Days returns the number of days the festival lasts
func (schedule Schedule) Days() int {
	return len(schedule)
}

// HasRoom checks whether day still has a free room
func (schedule Schedule) HasRoom(day, capacity int) bool {
	return len(schedule[day]) < capacity
}

// CanPlace checks whether film is compatible with every film already projected on day
func (schedule Schedule) CanPlace(conflicts *ConflictModel, day, film int) bool {
	for _, other := range schedule[day] {
		if !conflicts.Compatible(film, other) {
			return false
		}
	}
	return true
}

// Place appends film to day; callers must check HasRoom first
func (schedule Schedule) Place(day, film int) {
	schedule[day] = append(schedule[day], film)
}

// Pop removes and returns the last film placed on day
func (schedule Schedule) Pop(day int) int {
	last := len(schedule[day]) - 1
	film := schedule[day][last]
	schedule[day] = schedule[day][:last]
	return film
}

// Open adds a new day holding only film and returns its index
func (schedule *Schedule) Open(film int) int {
	*schedule = append(*schedule, []int{film})
	return len(*schedule) - 1
}

// Drop removes the last day
func (schedule *Schedule) Drop() {
	*schedule = (*schedule)[:len(*schedule)-1]
}

// Clone returns a deep copy so the original can keep being mutated
func (schedule Schedule) Clone() Schedule {
	clone := make(Schedule, len(schedule))
	for i, day := range schedule {
		clone[i] = slices.Clone(day)
	}
	return clone
}

// Compact drops empty days, preserving the order of the remaining ones
func (schedule Schedule) Compact() Schedule {
	return slices.DeleteFunc(schedule, func(day []int) bool { return len(day) == 0 })
}
