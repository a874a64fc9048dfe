package record

import (
	"fmt"
	"path/filepath"
)

// SnapshotName returns the file name of the numbered frame snapshot, counter
// 1 gives image_0000001.png
func SnapshotName(counter int) string {
	return fmt.Sprintf("image_%07d.png", counter)
}

// Snapshots hands out consecutive snapshot paths within a directory
type Snapshots struct {
	dir     string
	counter int
}

// NewSnapshots returns a snapshot namer for dir starting at image_0000001.png
func NewSnapshots(dir string) *Snapshots {
	return &Snapshots{dir: dir}
}

// Next returns the path of the next snapshot
func (s *Snapshots) Next() string {
	s.counter++
	return filepath.Join(s.dir, SnapshotName(s.counter))
}
