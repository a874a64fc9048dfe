package detect

import (
	"fmt"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// dictionaries maps the OpenCV predefined dictionary names to their codes
var dictionaries = map[string]gocv.ArucoDictionaryCode{
	"DICT_4X4_50":         gocv.ArucoDict4x4_50,
	"DICT_4X4_100":        gocv.ArucoDict4x4_100,
	"DICT_4X4_250":        gocv.ArucoDict4x4_250,
	"DICT_4X4_1000":       gocv.ArucoDict4x4_1000,
	"DICT_5X5_50":         gocv.ArucoDict5x5_50,
	"DICT_5X5_100":        gocv.ArucoDict5x5_100,
	"DICT_5X5_250":        gocv.ArucoDict5x5_250,
	"DICT_5X5_1000":       gocv.ArucoDict5x5_1000,
	"DICT_6X6_50":         gocv.ArucoDict6x6_50,
	"DICT_6X6_100":        gocv.ArucoDict6x6_100,
	"DICT_6X6_250":        gocv.ArucoDict6x6_250,
	"DICT_6X6_1000":       gocv.ArucoDict6x6_1000,
	"DICT_7X7_50":         gocv.ArucoDict7x7_50,
	"DICT_7X7_100":        gocv.ArucoDict7x7_100,
	"DICT_7X7_250":        gocv.ArucoDict7x7_250,
	"DICT_7X7_1000":       gocv.ArucoDict7x7_1000,
	"DICT_ARUCO_ORIGINAL": gocv.ArucoDictArucoOriginal,
	"DICT_APRILTAG_16H5":  gocv.ArucoDictAprilTag_16h5,
	"DICT_APRILTAG_25H9":  gocv.ArucoDictAprilTag_25h9,
	"DICT_APRILTAG_36H10": gocv.ArucoDictAprilTag_36h10,
	"DICT_APRILTAG_36H11": gocv.ArucoDictAprilTag_36h11,
}

// DefaultDictionary is the dictionary the arena markers are printed from
const DefaultDictionary = "DICT_6X6_50"

// LookupDictionary returns the predefined dictionary code for the given
// name.  Names are case insensitive and the DICT_ prefix is optional.
func LookupDictionary(name string) (gocv.ArucoDictionaryCode, error) {

	key := strings.ToUpper(strings.TrimSpace(name))

	if !strings.HasPrefix(key, "DICT_") {
		key = "DICT_" + key
	}

	code, ok := dictionaries[key]

	if !ok {
		return 0, fmt.Errorf("unknown aruco dictionary %q", name)
	}

	return code, nil
}

// DictionaryNames returns the supported dictionary names sorted
func DictionaryNames() []string {

	names := make([]string, 0, len(dictionaries))

	for name := range dictionaries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
