package manifest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// rangeKeys are the length options that carry both bounds at once.
var rangeKeys = []string{"in", "within"}

// rangePattern matches "1..10", "1...10" (exclusive end) and the endless
// form "5..".
var rangePattern = regexp.MustCompile(`^\s*(\d+)\s*(\.\.\.?)\s*(\d*)\s*$`)

// normalizeLengthOptions replaces an in/within range with explicit minimum
// and maximum options, in place. An endless range yields a minimum only.
func normalizeLengthOptions(opts map[string]any) error {
	for _, key := range rangeKeys {
		raw, ok := opts[key]
		if !ok {
			continue
		}
		lo, hi, err := parseRange(raw)
		if err != nil {
			return fmt.Errorf("length option %s: %w", key, err)
		}
		delete(opts, key)
		opts[core.OptionMinimum] = lo
		if hi != nil {
			opts[core.OptionMaximum] = *hi
		}
	}
	return nil
}

// parseRange accepts a range string or a two element list.
func parseRange(raw any) (int, *int, error) {
	switch t := raw.(type) {
	case string:
		m := rangePattern.FindStringSubmatch(t)
		if m == nil {
			return 0, nil, fmt.Errorf("invalid range %q", t)
		}
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, nil, fmt.Errorf("invalid range %q: %w", strings.TrimSpace(t), err)
		}
		if m[3] == "" {
			return lo, nil, nil
		}
		hi, err := strconv.Atoi(m[3])
		if err != nil {
			return 0, nil, fmt.Errorf("invalid range %q: %w", strings.TrimSpace(t), err)
		}
		if m[2] == "..." {
			hi--
		}
		if hi < lo {
			return 0, nil, fmt.Errorf("invalid range %q: end before start", strings.TrimSpace(t))
		}
		return lo, &hi, nil
	case []any:
		if len(t) != 2 {
			return 0, nil, fmt.Errorf("range list needs exactly two elements, got %d", len(t))
		}
		lo, err := toInt(t[0])
		if err != nil {
			return 0, nil, err
		}
		hi, err := toInt(t[1])
		if err != nil {
			return 0, nil, err
		}
		if hi < lo {
			return 0, nil, fmt.Errorf("invalid range [%d, %d]: end before start", lo, hi)
		}
		return lo, &hi, nil
	default:
		return 0, nil, fmt.Errorf("unsupported range value %v", raw)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil //nolint:gosec // manifest lengths are small
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("range bound %v is not an integer", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("range bound %q is not an integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("range bound %v is not an integer", v)
	}
}
