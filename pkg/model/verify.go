package model

import (
	"errors"
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

type unassignableError struct {
	day   int
	films int
	rooms int
}

func (err unassignableError) Error() string {
	return fmt.Sprintf("day %d projects %d films but only %d can be given a room", err.day+1, err.films, err.rooms)
}

// Verify checks that every film is projected exactly once, no day holds incompatible films and every film of a day
// gets a room of its own
func Verify(schedule Schedule, conflicts *ConflictModel, capacity int) error {
	films := conflicts.Films()
	projected := make([]bool, films)

	for day, dayFilms := range schedule {
		for i, film := range dayFilms {
			// Check that:
			// - Film exists
			// - Film was not already projected
			// - Film is compatible with every film after it on the same day
			if film < 0 || film >= films {
				return fmt.Errorf("%w: unknown film %d on day %d", ErrInvalidSchedule, film, day+1)
			} else if projected[film] {
				return fmt.Errorf("%w: film %d is projected more than once", ErrInvalidSchedule, film)
			}
			projected[film] = true

			for _, other := range dayFilms[i+1:] {
				if !conflicts.Compatible(film, other) {
					return fmt.Errorf("%w: incompatible films %d and %d share day %d", ErrInvalidSchedule, film, other, day+1)
				}
			}
		}

		if _, err := assignRooms(day, dayFilms, capacity); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
	}

	if missing := lo.IndexOf(projected, false); missing >= 0 {
		return fmt.Errorf("%w: film %d is never projected", ErrInvalidSchedule, missing)
	}
	return nil
}

// assignRooms seats the films of a day into distinct rooms through a maximum bipartite matching, any room can hold any
// film. It returns (film, room) pairs
func assignRooms(day int, films []int, rooms int) ([][2]int, error) {
	if len(films) == 0 {
		return [][2]int{}, nil
	}

	neighbors := func(_ any, _ any) (bool, error) {
		return true, nil
	}

	// Transform films and rooms to slices of any
	filmsAny, roomsAny := lo.Map(films, func(film int, _ int) any { return film }), lo.Map(lo.Range(rooms), func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(filmsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(films) {
		return nil, unassignableError{day: day, films: len(films), rooms: rooms}
	}

	assignments := make([][2]int, 0, len(films))
	for _, edge := range matching {
		filmIndex, roomIndex := edge.Node1, edge.Node2-len(films)
		assignments = append(assignments, [2]int{films[filmIndex], roomIndex})
	}
	return assignments, nil
}
