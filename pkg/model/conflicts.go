package model

import (
	"slices"

	"github.com/samber/lo"
)

// ConflictModel holds the incompatibility relation between films. It is built once and only queried afterwards,
// so a single value can be shared by every scheduler
type ConflictModel struct {
	relation [][]bool // relation[i][j] = true if and only if films i and j cannot be projected on the same day
	degrees  []int    // Number of distinct films each film is incompatible with
}

func NewConflictModel(films int, incompatibilities [][2]int) *ConflictModel {
	relation := make([][]bool, films)
	for i := range films {
		relation[i] = make([]bool, films)
	}
	degrees := make([]int, films)

	for _, pair := range incompatibilities {
		first, second := pair[0], pair[1]
		// Self-incompatibilities are rejected by the parser, repeated pairs count once
		if first == second || relation[first][second] {
			continue
		}
		relation[first][second] = true
		relation[second][first] = true
		degrees[first]++
		degrees[second]++
	}

	return &ConflictModel{
		relation: relation,
		degrees:  degrees,
	}
}

// ConflictModelFromInput builds the conflict model of a parsed instance
func ConflictModelFromInput(input ModelInput) *ConflictModel {
	return NewConflictModel(len(input.Films), input.Incompatibilities)
}

func (model *ConflictModel) Films() int {
	return len(model.relation)
}

// Compatible checks whether films a and b can be projected on the same day
func (model *ConflictModel) Compatible(a, b int) bool {
	return !model.relation[a][b]
}

func (model *ConflictModel) Degree(film int) int {
	return model.degrees[film]
}

// DegreeOrder returns every film sorted by descending degree (most constrained first), ties keep index order
func (model *ConflictModel) DegreeOrder() []int {
	order := lo.Range(model.Films())
	slices.SortStableFunc(order, func(a, b int) int {
		return model.degrees[b] - model.degrees[a]
	})
	return order
}

// Conflicts counts the members of day that are incompatible with film
func (model *ConflictModel) Conflicts(film int, day []int) int {
	return lo.CountBy(day, func(other int) bool {
		return model.relation[film][other]
	})
}

// DayConflicts counts the incompatible pairs inside day
func (model *ConflictModel) DayConflicts(day []int) int {
	conflicts := 0
	for i := range len(day) {
		for j := i + 1; j < len(day); j++ {
			if model.relation[day[i]][day[j]] {
				conflicts++
			}
		}
	}
	return conflicts
}
