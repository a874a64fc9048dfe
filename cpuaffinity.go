package tagtrack

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"unsafe"
)

// SetCPUAffinity sets the CPU Affinity mask of the program to run on the specified
// cores
func SetCPUAffinity(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// ParseCoreList parses a comma delimited list of CPU core numbers and ranges,
// eg: "0,2" or "4-7", into a slice of core numbers
func ParseCoreList(list string) ([]int, error) {

	var cores []int
	maxCore := int(unsafe.Sizeof(uintptr(0)) * 8)

	for _, part := range strings.Split(list, ",") {

		part = strings.TrimSpace(part)

		if part == "" {
			continue
		}

		lo, hi := part, part

		if idx := strings.Index(part, "-"); idx >= 0 {
			lo, hi = part[:idx], part[idx+1:]
		}

		start, err := strconv.Atoi(strings.TrimSpace(lo))

		if err != nil {
			return nil, fmt.Errorf("invalid core %q: %w", part, err)
		}

		end, err := strconv.Atoi(strings.TrimSpace(hi))

		if err != nil {
			return nil, fmt.Errorf("invalid core %q: %w", part, err)
		}

		if start < 0 || end < start || end >= maxCore {
			return nil, fmt.Errorf("core range %q out of range [0-%d)", part, maxCore)
		}

		for c := start; c <= end; c++ {
			cores = append(cores, c)
		}
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no cores given")
	}

	return cores, nil
}
