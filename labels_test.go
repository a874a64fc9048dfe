package tagtrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMarkerNames(t *testing.T) {
	file := filepath.Join(t.TempDir(), "markers.txt")

	data := "# arena robots\n7 psi-swarm-3\n\n12 charging dock\n"
	require.NoError(t, os.WriteFile(file, []byte(data), 0o644))

	names, err := LoadMarkerNames(file)
	require.NoError(t, err)

	assert.Equal(t, map[int]string{7: "psi-swarm-3", 12: "charging dock"}, names)
}

func TestLoadMarkerNamesErrors(t *testing.T) {
	_, err := LoadMarkerNames(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(file, []byte("seven robot\n"), 0o644))

	_, err = LoadMarkerNames(file)
	assert.ErrorContains(t, err, "line 1")
}
