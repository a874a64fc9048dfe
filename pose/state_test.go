package pose

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStep(t *testing.T) {
	tr := newPinholeTracker(t)
	s := NewState()

	// never seen
	p, fresh := s.Step(tr, nil, 3)
	assert.False(t, fresh)
	assert.Equal(t, Pose{}, p)
	_, ok := s.Pose(3)
	assert.False(t, ok)

	// first sighting
	p, fresh = s.Step(tr, []Observation{square(3, 200, 0, 10)}, 3)
	require.True(t, fresh)
	assert.InDelta(t, 20.0, p.X, 1e-9)

	seen, ok := s.LastSeen(3)
	require.True(t, ok)
	assert.Equal(t, 2, seen)

	// missed frames keep the last pose
	for i := 0; i < 3; i++ {
		got, fresh := s.Step(tr, []Observation{square(8, 0, 0, 1)}, 3)
		assert.False(t, fresh)
		assert.Equal(t, p, got)
	}

	age, ok := s.Age(3)
	require.True(t, ok)
	assert.Equal(t, 3, age)
	assert.Equal(t, 5, s.Frame())

	// degenerate detection keeps the last pose and does not refresh it
	SetLogger(nil)
	got, fresh := s.Step(tr, []Observation{{ID: 3}}, 3)
	assert.False(t, fresh)
	assert.Equal(t, p, got)

	seen, _ = s.LastSeen(3)
	assert.Equal(t, 2, seen)

	// new sighting overwrites
	got, fresh = s.Step(tr, []Observation{square(3, -100, 50, 10)}, 3)
	require.True(t, fresh)
	assert.InDelta(t, -10.0, got.X, 1e-9)
	assert.InDelta(t, 5.0, got.Y, 1e-9)

	stored, ok := s.Pose(3)
	require.True(t, ok)
	assert.Equal(t, got, stored)
}

func TestStateEntriesNeverRemoved(t *testing.T) {
	tr := newPinholeTracker(t)
	s := NewState()

	s.Step(tr, []Observation{square(10, 0, 0, 2)}, 10)
	s.Step(tr, []Observation{square(2, 0, 0, 2)}, 2)

	for i := 0; i < 10; i++ {
		s.Step(tr, nil, 10)
		s.Step(tr, nil, 2)
	}

	assert.Equal(t, []int{2, 10}, s.IDs())
}

func TestTrail(t *testing.T) {
	trail := NewTrail(3)

	assert.Nil(t, trail.Points(1))

	for i := 0; i < 5; i++ {
		trail.Add(1, Pose{Pixel: r2.Point{X: float64(i), Y: float64(-i)}})
	}
	trail.Add(2, Pose{Pixel: r2.Point{X: 9, Y: 9}})

	assert.Equal(t, []r2.Point{{X: 2, Y: -2}, {X: 3, Y: -3}, {X: 4, Y: -4}}, trail.Points(1))
	assert.Equal(t, []r2.Point{{X: 9, Y: 9}}, trail.Points(2))

	// returned points are a copy
	pts := trail.Points(1)
	pts[0] = r2.Point{}
	assert.Equal(t, r2.Point{X: 2, Y: -2}, trail.Points(1)[0])

	trail.Reset()
	assert.Nil(t, trail.Points(1))
}

func TestPoseString(t *testing.T) {
	p := Pose{X: 12.3456, Y: -0.98765, Angle: 135}
	assert.Equal(t, "X = 12.3 Y = -0.988 Angle = 135", p.String())
}
