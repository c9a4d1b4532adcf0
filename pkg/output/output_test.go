package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/festival/pkg/model"
)

func festivalInput(t *testing.T, rooms []string) model.ModelInput {
	t.Helper()
	input, err := model.ProcessRawInput(model.RawModelInput{
		Films:             []string{"Alien", "Brazil", "Casablanca"},
		Incompatibilities: [][]string{{"Alien", "Brazil"}},
		Rooms:             rooms,
	})
	require.NoError(t, err)
	return input
}

func TestWrite(t *testing.T) {
	// Arrange
	input := festivalInput(t, []string{"Lumiere", "Melies"})
	schedule := model.Schedule{{0, 2}, {1}}
	buffer := &bytes.Buffer{}

	// Act
	err := Write(buffer, input, schedule, 1500*time.Millisecond)

	// Assert
	require.NoError(t, err)
	expected := "1.5\n" +
		"2\n" +
		"Alien 1 Lumiere\n" +
		"Casablanca 1 Melies\n" +
		"Brazil 2 Lumiere\n"
	assert.Equal(t, expected, buffer.String())
}

func TestWriteWithoutRooms(t *testing.T) {
	// Arrange
	input := festivalInput(t, nil)
	schedule := model.Schedule{{0}, {1}, {2}}
	buffer := &bytes.Buffer{}

	// Act
	err := Write(buffer, input, schedule, 0)

	// Assert
	require.NoError(t, err)
	expected := "0.0\n3\nAlien 1 -\nBrazil 2 -\nCasablanca 3 -\n"
	assert.Equal(t, expected, buffer.String())
}

func TestFileRecorderOverwrites(t *testing.T) {
	// Arrange
	directory := t.TempDir()
	path := filepath.Join(directory, "festival.out")
	input := festivalInput(t, []string{"Lumiere", "Melies"})
	recorder := NewFileRecorder(path, input)

	// Act
	require.NoError(t, recorder.Record(model.Schedule{{0}, {1}, {2}}))
	require.NoError(t, recorder.Record(model.Schedule{{0, 2}, {1}}))

	// Assert
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "2", lines[1])
	assert.Equal(t, []string{"Alien 1 Lumiere", "Casablanca 1 Melies", "Brazil 2 Lumiere"}, lines[2:])
	assert.Equal(t, 2, recorder.Records())

	entries, err := os.ReadDir(directory)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // No temporary file left behind
}

func TestFileRecorderMissingDirectory(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "missing", "festival.out")
	recorder := NewFileRecorder(path, festivalInput(t, nil))

	// Act
	err := recorder.Record(model.Schedule{{0}, {1}, {2}})

	// Assert
	assert.Error(t, err)
	assert.Zero(t, recorder.Records())
}
