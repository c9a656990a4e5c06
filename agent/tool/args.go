package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// limitArg reads "limit" as a JSON number or numeric string. Missing, zero,
// negative or unparsable values fall back to the default.
func limitArg(args map[string]any) int {
	n := 0
	switch t := args["limit"].(type) {
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) && t < math.MaxInt32 {
			n = int(t)
		} else if t >= math.MaxInt32 {
			n = maxListLimit
		}
	case int:
		n = t
	case int64:
		n = int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = int(i)
		} else if f, err := t.Float64(); err == nil {
			n = int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			n = i
		}
	}

	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	default:
		return n
	}
}

// statusArg returns nil when key is absent or blank.
func statusArg(args map[string]any, key string) (*shipment.Status, error) {
	raw := stringArg(args, key)
	if raw == "" {
		return nil, nil
	}
	st, err := shipment.ParseStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: must be one of %s", key, raw, strings.Join(shipment.StatusNames(), ", "))
	}
	return &st, nil
}
