package tagtrack

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadMarkerNames reads the display names of markers from the given text
// file.  Each line holds a marker identifier followed by its name, eg:
// "7 psi-swarm-3".  Blank lines and lines starting with # are ignored.
func LoadMarkerNames(file string) (map[int]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	names := make(map[int]string)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		id, err := strconv.Atoi(fields[0])

		if err != nil {
			return nil, fmt.Errorf("line %d: invalid marker id %q: %w", lineNum, fields[0], err)
		}

		names[id] = strings.Join(fields[1:], " ")
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return names, nil
}
