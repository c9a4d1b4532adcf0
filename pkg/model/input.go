package model

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrUndeclaredFilm = errors.New("undeclared film")
	ErrDuplicateName  = errors.New("duplicate name")
)

// RawModelInput mirrors the JSON instance format, where films are referenced by name
type RawModelInput struct {
	Films             []string
	Incompatibilities [][]string
	Rooms             []string
}

type ModelInput struct {
	Films             []string
	Rooms             []string
	Incompatibilities [][2]int // Pairs of film indices that cannot be projected on the same day
	filmIndex         map[string]int
}

// Capacity returns the number of films a single day can hold. An instance without rooms is degenerate: every film opens its own day
func (input ModelInput) Capacity() int {
	return max(len(input.Rooms), 1)
}

// FilmIndex returns the index of the film with the given name
func (input ModelInput) FilmIndex(name string) (int, bool) {
	index, ok := input.filmIndex[name]
	return index, ok
}

// InputFromFile reads an instance from file, the format is picked from the extension (".json" or plain text)
func InputFromFile(file string) (ModelInput, error) {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return InputFromJson(file)
	}

	handle, err := os.Open(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot open input file: %w", err)
	}
	defer handle.Close()

	return ParseInput(handle)
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return ProcessRawInput(rawInput)
}

// ParseInput reads the whitespace-delimited instance format:
// films count, film names, incompatibilities count, pairs of film names, rooms count, room names
func ParseInput(reader io.Reader) (ModelInput, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)

	token := 0
	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("cannot read input: %w", err)
			}
			return "", fmt.Errorf("%w: unexpected end of input while reading %v (token %d)", ErrMalformedInput, what, token+1)
		}
		token++
		return scanner.Text(), nil
	}
	count := func(what string) (int, error) {
		word, err := next(what)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(word)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("%w: %v must be a non-negative integer, found \"%v\" (token %d)", ErrMalformedInput, what, word, token)
		}
		return value, nil
	}

	var rawInput RawModelInput

	//** Films
	films, err := count("films count")
	if err != nil {
		return ModelInput{}, err
	}
	rawInput.Films = make([]string, 0, films)
	for range films {
		name, err := next("film name")
		if err != nil {
			return ModelInput{}, err
		}
		rawInput.Films = append(rawInput.Films, name)
	}

	//** Incompatibilities
	pairs, err := count("incompatibilities count")
	if err != nil {
		return ModelInput{}, err
	}
	rawInput.Incompatibilities = make([][]string, 0, pairs)
	for range pairs {
		first, err := next("incompatible film")
		if err != nil {
			return ModelInput{}, err
		}
		second, err := next("incompatible film")
		if err != nil {
			return ModelInput{}, err
		}
		rawInput.Incompatibilities = append(rawInput.Incompatibilities, []string{first, second})
	}

	//** Rooms
	rooms, err := count("rooms count")
	if err != nil {
		return ModelInput{}, err
	}
	rawInput.Rooms = make([]string, 0, rooms)
	for range rooms {
		name, err := next("room name")
		if err != nil {
			return ModelInput{}, err
		}
		rawInput.Rooms = append(rawInput.Rooms, name)
	}

	return ProcessRawInput(rawInput)
}

// ProcessRawInput resolves film names into indices and validates the instance
func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	input := ModelInput{
		Films:             rawInput.Films,
		Rooms:             rawInput.Rooms,
		Incompatibilities: make([][2]int, 0, len(rawInput.Incompatibilities)),
		filmIndex:         make(map[string]int, len(rawInput.Films)),
	}
	if input.Films == nil {
		input.Films = []string{}
	}
	if input.Rooms == nil {
		input.Rooms = []string{}
	}

	for i, name := range input.Films {
		if _, ok := input.filmIndex[name]; ok {
			return ModelInput{}, fmt.Errorf("%w: film \"%v\"", ErrDuplicateName, name)
		}
		input.filmIndex[name] = i
	}

	if duplicates := lo.FindDuplicates(input.Rooms); len(duplicates) > 0 {
		return ModelInput{}, fmt.Errorf("%w: room \"%v\"", ErrDuplicateName, duplicates[0])
	}

	for _, pair := range rawInput.Incompatibilities {
		if len(pair) != 2 {
			return ModelInput{}, fmt.Errorf("%w: incompatibility must name exactly two films: %v", ErrMalformedInput, pair)
		}

		first, ok := input.filmIndex[pair[0]]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: \"%v\"", ErrUndeclaredFilm, pair[0])
		}
		second, ok := input.filmIndex[pair[1]]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: \"%v\"", ErrUndeclaredFilm, pair[1])
		}
		if first == second {
			return ModelInput{}, fmt.Errorf("%w: film \"%v\" cannot be incompatible with itself", ErrMalformedInput, pair[0])
		}

		input.Incompatibilities = append(input.Incompatibilities, [2]int{first, second})
	}

	return input, nil
}
