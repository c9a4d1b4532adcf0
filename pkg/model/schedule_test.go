package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulePlacement(t *testing.T) {
	// Arrange
	conflicts := NewConflictModel(4, [][2]int{{0, 1}})
	schedule := Schedule{}

	// Act
	day := schedule.Open(0)
	canPlaceConflicting := schedule.CanPlace(conflicts, day, 1)
	canPlaceCompatible := schedule.CanPlace(conflicts, day, 2)
	schedule.Place(day, 2)

	// Assert
	assert.Equal(t, 0, day)
	assert.False(t, canPlaceConflicting)
	assert.True(t, canPlaceCompatible)
	assert.Equal(t, Schedule{{0, 2}}, schedule)
	assert.False(t, schedule.HasRoom(0, 2))
	assert.True(t, schedule.HasRoom(0, 3))
}

func TestScheduleUndo(t *testing.T) {
	// Arrange
	schedule := Schedule{{0, 1}}
	schedule.Open(2)

	// Act
	film := schedule.Pop(0)
	schedule.Drop()

	// Assert
	assert.Equal(t, 1, film)
	assert.Equal(t, Schedule{{0}}, schedule)
	assert.Equal(t, 1, schedule.Days())
}

func TestScheduleClone(t *testing.T) {
	// Arrange
	schedule := Schedule{{0, 1}, {2}}

	// Act
	clone := schedule.Clone()
	schedule[0][0] = 3
	schedule.Place(1, 4)

	// Assert
	assert.Equal(t, Schedule{{0, 1}, {2}}, clone)
}

func TestScheduleCompact(t *testing.T) {
	// Act
	compacted := Schedule{{}, {0}, {}, {1, 2}, {}}.Compact()

	// Assert
	assert.Equal(t, Schedule{{0}, {1, 2}}, compacted)
}
