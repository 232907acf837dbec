package ownership

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/open-edge-platform/content-resolver/internal/errs"
)

const (
	// MaxLevel is the deepest breadth-first level within one layer.
	MaxLevel = 9
	// MaxLayer is the last build-dependency layer.
	MaxLayer = 9

	levelPrefix = "level"
	numLevels   = (MaxLayer + 1) * (MaxLevel + 1)
)

// LevelName returns the bucket name of a level within a layer: "level3" for
// level 3 of layer 0 and "level23" for level 3 of layer 2.
func LevelName(layer, level int) string {
	if layer == 0 {
		return fmt.Sprintf("%s%d", levelPrefix, level)
	}
	return fmt.Sprintf("%s%d%d", levelPrefix, layer, level)
}

// LevelIndex parses a name produced by LevelName.
func LevelIndex(name string) (layer, level int, err error) {
	digits, ok := strings.CutPrefix(name, levelPrefix)
	if !ok {
		return 0, 0, errs.Argument(name, "not a level name")
	}
	if _, err := strconv.Atoi(digits); err != nil || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return 0, 0, errs.Argument(name, "not a level name")
	}
	switch len(digits) {
	case 1:
		return 0, int(digits[0] - '0'), nil
	case 2:
		if digits[0] == '0' {
			return 0, 0, errs.Argument(name, "layer 0 levels have no layer digit")
		}
		return int(digits[0] - '0'), int(digits[1] - '0'), nil
	default:
		return 0, 0, errs.Argument(name, "not a level name")
	}
}

// bucket returns the position of a level in scan order.
func bucket(layer, level int) int {
	return layer*(MaxLevel+1) + level
}

func unbucket(i int) (layer, level int) {
	return i / (MaxLevel + 1), i % (MaxLevel + 1)
}

func checkLayer(layer int) error {
	if layer < 1 || layer > MaxLayer {
		return errs.Argument(strconv.Itoa(layer), "build layers run from 1 to %d", MaxLayer)
	}
	return nil
}
