package record

import (
	"fmt"
	"os"
	"sync"
)

// Recorder writes pose log rows to a CSV file while it is active.  Activation
// is toggled at runtime, for example from an HTTP handler, while the frame
// loop calls Record.
type Recorder struct {
	sync.Mutex
	active bool
	file   *os.File
	writer *CSVWriter
	rows   int
}

// NewRecorder creates the CSV file at path and writes its header.  The
// recorder starts inactive unless active is set.
func NewRecorder(path string, active bool) (*Recorder, error) {

	f, err := os.Create(path)

	if err != nil {
		return nil, fmt.Errorf("failed to create pose log: %w", err)
	}

	w, err := NewCSVWriter(f)

	if err != nil {
		f.Close()
		return nil, err
	}

	return &Recorder{
		active: active,
		file:   f,
		writer: w,
	}, nil
}

// SetActive starts or stops recording.  Stopping flushes buffered rows.
func (r *Recorder) SetActive(active bool) error {
	r.Lock()
	defer r.Unlock()

	r.active = active

	if !active {
		return r.writer.Flush()
	}

	return nil
}

// Active reports whether rows are currently being recorded
func (r *Recorder) Active() bool {
	r.Lock()
	defer r.Unlock()

	return r.active
}

// Record writes the entry if the recorder is active and reports whether it
// was written
func (r *Recorder) Record(e Entry) (bool, error) {
	r.Lock()
	defer r.Unlock()

	if !r.active {
		return false, nil
	}

	if err := r.writer.Write(e); err != nil {
		return false, err
	}

	r.rows++

	return true, nil
}

// Rows returns the number of rows recorded
func (r *Recorder) Rows() int {
	r.Lock()
	defer r.Unlock()

	return r.rows
}

// Close flushes buffered rows and closes the file
func (r *Recorder) Close() error {
	r.Lock()
	defer r.Unlock()

	r.active = false

	if err := r.writer.Flush(); err != nil {
		r.file.Close()
		return err
	}

	return r.file.Close()
}
