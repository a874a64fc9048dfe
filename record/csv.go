package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/swdee/go-tagtrack/pose"
)

// Header is the column layout of a pose log
var Header = []string{"ID", "X", "Y", "Angle", "Frame", "Time"}

// Entry is a single row of the pose log
type Entry struct {
	ID    int
	X     float64
	Y     float64
	Angle float64
	Frame int
	Time  time.Time
}

// NewEntry returns the log row for the pose of a marker
func NewEntry(id int, p pose.Pose, frame int, t time.Time) Entry {
	return Entry{
		ID:    id,
		X:     p.X,
		Y:     p.Y,
		Angle: p.Angle,
		Frame: frame,
		Time:  t,
	}
}

func (e Entry) record() []string {
	return []string{
		strconv.Itoa(e.ID),
		strconv.FormatFloat(e.X, 'f', -1, 64),
		strconv.FormatFloat(e.Y, 'f', -1, 64),
		strconv.FormatFloat(e.Angle, 'f', -1, 64),
		strconv.Itoa(e.Frame),
		e.Time.UTC().Format(time.RFC3339Nano),
	}
}

// CSVWriter writes pose log rows preceded by the Header
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter writes the header to w and returns a writer for the rows
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {

	cw := &CSVWriter{w: csv.NewWriter(w)}

	if err := cw.w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	return cw, nil
}

// Write appends a row
func (c *CSVWriter) Write(e Entry) error {
	if err := c.w.Write(e.record()); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// ReadCSV parses a pose log.  The Frame and Time columns are optional so logs
// holding only ID,X,Y,Angle are accepted.
func ReadCSV(r io.Reader) ([]Entry, error) {

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()

	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	if len(rows[0]) < 4 || rows[0][0] != Header[0] {
		return nil, fmt.Errorf("unexpected csv header: %v", rows[0])
	}

	entries := make([]Entry, 0, len(rows)-1)

	for i, row := range rows[1:] {
		e, err := parseRow(row)

		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+2, err)
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// ReadCSVFile parses the pose log at path
func ReadCSVFile(path string) ([]Entry, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("failed to open pose log: %w", err)
	}

	defer f.Close()

	return ReadCSV(f)
}

func parseRow(row []string) (Entry, error) {

	var e Entry
	var err error

	if len(row) < 4 {
		return e, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}

	if e.ID, err = strconv.Atoi(row[0]); err != nil {
		return e, fmt.Errorf("invalid id: %w", err)
	}

	floats := []*float64{&e.X, &e.Y, &e.Angle}

	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(row[i+1], 64); err != nil {
			return e, fmt.Errorf("invalid %s: %w", Header[i+1], err)
		}
	}

	if len(row) > 4 && row[4] != "" {
		if e.Frame, err = strconv.Atoi(row[4]); err != nil {
			return e, fmt.Errorf("invalid frame: %w", err)
		}
	}

	if len(row) > 5 && row[5] != "" {
		if e.Time, err = time.Parse(time.RFC3339Nano, row[5]); err != nil {
			return e, fmt.Errorf("invalid time: %w", err)
		}
	}

	return e, nil
}
