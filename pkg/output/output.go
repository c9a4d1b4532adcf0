package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/limaJavier/festival/pkg/model"
)

// noRoom names the room of every film when the instance declares no rooms
const noRoom = "-"

// Write renders schedule in the festival output format: the elapsed seconds with one decimal, the number of days and
// one "film day room" line per projection, days starting at 1 and rooms taken positionally from the input
func Write(writer io.Writer, input model.ModelInput, schedule model.Schedule, elapsed time.Duration) error {
	buffered := bufio.NewWriter(writer)

	fmt.Fprintf(buffered, "%.1f\n", elapsed.Seconds())
	fmt.Fprintf(buffered, "%d\n", schedule.Days())
	for day, films := range schedule {
		for room, film := range films {
			fmt.Fprintf(buffered, "%v %d %v\n", input.Films[film], day+1, roomName(input, room))
		}
	}

	return buffered.Flush()
}

func roomName(input model.ModelInput, room int) string {
	if room < len(input.Rooms) {
		return input.Rooms[room]
	}
	return noRoom
}

// FileRecorder overwrites a file with every schedule it records. The elapsed time is measured from the recorder's
// creation
type FileRecorder struct {
	path    string
	input   model.ModelInput
	start   time.Time
	records int
}

func NewFileRecorder(path string, input model.ModelInput) *FileRecorder {
	return &FileRecorder{
		path:  path,
		input: input,
		start: time.Now(),
	}
}

// Record replaces the file atomically: the schedule goes to a temporary file in the same directory which is then
// renamed over the previous one
func (recorder *FileRecorder) Record(schedule model.Schedule) error {
	elapsed := time.Since(recorder.start)

	temp, err := os.CreateTemp(filepath.Dir(recorder.path), "."+filepath.Base(recorder.path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary output file: %w", err)
	}
	defer os.Remove(temp.Name()) // No-op once renamed

	if err := temp.Chmod(0o644); err != nil {
		temp.Close()
		return fmt.Errorf("cannot set output file permissions: %w", err)
	}
	if err := Write(temp, recorder.input, schedule, elapsed); err != nil {
		temp.Close()
		return fmt.Errorf("cannot write output: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("cannot write output: %w", err)
	}
	if err := os.Rename(temp.Name(), recorder.path); err != nil {
		return fmt.Errorf("cannot replace output file: %w", err)
	}

	recorder.records++
	return nil
}

// Records returns how many schedules have been written
func (recorder *FileRecorder) Records() int {
	return recorder.records
}
