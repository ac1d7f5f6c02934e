package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anisan-cli/skipsync/segment"
	"github.com/samber/lo"
)

// ErrUnknownKey is returned for keys without a registered field.
var ErrUnknownKey = errors.New("unknown key")

// Parse converts command line values into the type of the field registered under k.
func Parse(k string, values []string) (any, error) {
	field, ok := Default[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, k)
	}

	if _, ok := field.Value.([]string); !ok && len(values) != 1 {
		return nil, fmt.Errorf("%s takes exactly one value, got %d", k, len(values))
	}

	switch field.Value.(type) {
	case string:
		return values[0], nil
	case int:
		v, err := strconv.Atoi(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid integer value: %s", values[0])
		}
		return v, nil
	case float64:
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number value: %s", values[0])
		}
		return v, nil
	case time.Duration:
		v, err := time.ParseDuration(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s", values[0])
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, fmt.Errorf("invalid boolean value: %s", values[0])
		}
		return v, nil
	case []string:
		values = lo.FlatMap(values, func(v string, _ int) []string {
			return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
				return strings.TrimSpace(s)
			}))
		})
		if lo.Contains(categoryKeys, k) {
			for i, v := range values {
				c, err := segment.ParseCategory(v)
				if err != nil {
					return nil, err
				}
				values[i] = string(c)
			}
		}
		return values, nil
	default:
		return nil, fmt.Errorf("%s has an unsupported type %T", k, field.Value)
	}
}
