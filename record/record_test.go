package record

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-tagtrack/pose"
)

var stamp = time.Date(2024, 5, 1, 12, 0, 0, 500, time.UTC)

func TestCSVWriterHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewCSVWriter(&buf)
	require.NoError(t, err)

	p := pose.Pose{X: 1.5, Y: -2, Angle: 135, Pixel: r2.Point{X: 10, Y: 10}}
	require.NoError(t, w.Write(NewEntry(4, p, 7, stamp)))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "ID,X,Y,Angle,Frame,Time", lines[0])
	assert.Equal(t, "4,1.5,-2,135,7,2024-05-01T12:00:00.0000005Z", lines[1])
}

func TestReadCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := NewCSVWriter(&buf)
	require.NoError(t, err)

	in := []Entry{
		{ID: 1, X: 0.25, Y: 3, Angle: -90, Frame: 1, Time: stamp},
		{ID: 2, X: 10, Y: 11, Angle: 180, Frame: 1, Time: stamp},
	}

	for _, e := range in {
		require.NoError(t, w.Write(e))
	}
	require.NoError(t, w.Flush())

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	for i := range in {
		assert.Equal(t, in[i].ID, out[i].ID)
		assert.Equal(t, in[i].X, out[i].X)
		assert.Equal(t, in[i].Y, out[i].Y)
		assert.Equal(t, in[i].Angle, out[i].Angle)
		assert.Equal(t, in[i].Frame, out[i].Frame)
		assert.True(t, in[i].Time.Equal(out[i].Time))
	}
}

func TestReadCSVShortLog(t *testing.T) {
	out, err := ReadCSV(strings.NewReader("ID,X,Y,Angle\n3,1,2,45\n"))
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, Entry{ID: 3, X: 1, Y: 2, Angle: 45}, out[0])
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad header", "a,b,c,d\n"},
		{"short row", "ID,X,Y,Angle\n1,2\n"},
		{"bad id", "ID,X,Y,Angle\nx,1,2,3\n"},
		{"bad angle", "ID,X,Y,Angle\n1,1,2,north\n"},
		{"bad time", "ID,X,Y,Angle,Frame,Time\n1,1,2,3,4,yesterday\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestRecorderActivation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poses.csv")

	rec, err := NewRecorder(path, false)
	require.NoError(t, err)

	e := Entry{ID: 1, X: 1, Y: 1, Frame: 1, Time: stamp}

	written, err := rec.Record(e)
	require.NoError(t, err)
	assert.False(t, written)

	require.NoError(t, rec.SetActive(true))
	assert.True(t, rec.Active())

	written, err = rec.Record(e)
	require.NoError(t, err)
	assert.True(t, written)

	require.NoError(t, rec.SetActive(false))

	written, err = rec.Record(e)
	require.NoError(t, err)
	assert.False(t, written)

	assert.Equal(t, 1, rec.Rows())
	require.NoError(t, rec.Close())

	entries, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorderConcurrentToggle(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "poses.csv"), true)
	require.NoError(t, err)
	defer rec.Close()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = rec.Record(Entry{ID: i, Time: stamp})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = rec.SetActive(i%2 == 0)
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, rec.Rows(), 100)
}

func TestNewRecorderBadPath(t *testing.T) {
	_, err := NewRecorder(filepath.Join(t.TempDir(), "missing", "poses.csv"), true)
	assert.Error(t, err)
}

func TestPolicyWants(t *testing.T) {
	tests := []struct {
		policy      Policy
		fresh, seen bool
		want        bool
	}{
		{LogFresh, true, true, true},
		{LogFresh, false, true, false},
		{LogFresh, false, false, false},
		{LogEveryFrame, true, true, true},
		{LogEveryFrame, false, true, true},
		{LogEveryFrame, false, false, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.Wants(tt.fresh, tt.seen),
			"policy %d fresh %v seen %v", tt.policy, tt.fresh, tt.seen)
	}
}

func TestSnapshotName(t *testing.T) {
	assert.Equal(t, "image_0000001.png", SnapshotName(1))
	assert.Equal(t, "image_1234567.png", SnapshotName(1234567))

	s := NewSnapshots("snaps")
	assert.Equal(t, filepath.Join("snaps", "image_0000001.png"), s.Next())
	assert.Equal(t, filepath.Join("snaps", "image_0000002.png"), s.Next())
}

func TestTracks(t *testing.T) {
	tracks := Tracks([]Entry{{ID: 2, X: 1}, {ID: 1}, {ID: 2, X: 2}})

	require.Len(t, tracks, 2)
	require.Len(t, tracks[2], 2)
	assert.Equal(t, 1.0, tracks[2][0].X)
	assert.Equal(t, 2.0, tracks[2][1].X)
}

func TestPlotTrajectory(t *testing.T) {
	entries := []Entry{
		{ID: 1, X: 0, Y: 0},
		{ID: 1, X: 10, Y: 5},
		{ID: 1, X: 20, Y: 0},
		{ID: 2, X: -5, Y: -5},
		{ID: 2, X: -5, Y: 5},
	}

	file := filepath.Join(t.TempDir(), "trajectory.png")
	require.NoError(t, PlotTrajectory(entries, file))

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	p, err := Trajectory(entries)
	require.NoError(t, err)

	// axes share a span
	assert.InDelta(t, p.X.Max-p.X.Min, p.Y.Max-p.Y.Min, 1e-9)
}

func TestPlotTrajectoryEmpty(t *testing.T) {
	assert.Error(t, PlotTrajectory(nil, filepath.Join(t.TempDir(), "x.png")))
}
