package services

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	usageRoot           = "electricity_usage"
	billsRoot           = "electricity_bills"
	usersRoot           = "user_details"
	connectionStatusKey = "connection_status"
)

func usagePath(parts ...string) string {
	return usageRoot + "/" + strings.Join(parts, "/")
}

func billsPath(parts ...string) string {
	return billsRoot + "/" + strings.Join(parts, "/")
}

func usersPath(parts ...string) string {
	return usersRoot + "/" + strings.Join(parts, "/")
}

// sampleNode is one level of the usage tree normalized to a single shape.
// The store returns sparse levels as objects keyed by zero-padded two-digit
// strings and dense levels as arrays indexed by minute with nulls for gaps.
// Both forms resolve here once so the aggregation code sees one shape.
type sampleNode struct {
	sparse map[string]interface{}
	dense  []interface{}
}

func asSampleNode(raw interface{}) (sampleNode, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return sampleNode{sparse: v}, true
	case []interface{}:
		return sampleNode{dense: v}, true
	default:
		return sampleNode{}, false
	}
}

type sampleEntry struct {
	key string
	raw interface{}
}

// entries returns the node's children in ascending key order. Dense array
// indices become zero-padded two-digit keys, matching the sparse form.
func (n sampleNode) entries() []sampleEntry {
	if n.dense != nil {
		out := make([]sampleEntry, 0, len(n.dense))
		for i, raw := range n.dense {
			out = append(out, sampleEntry{key: fmt.Sprintf("%02d", i), raw: raw})
		}
		return out
	}

	keys := make([]string, 0, len(n.sparse))
	for k := range n.sparse {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sampleEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, sampleEntry{key: k, raw: n.sparse[k]})
	}
	return out
}

// asWatts coerces a raw leaf to a float64 sample. Absent (nil), boolean,
// and non-numeric values are invalid and contribute nothing to averages.
func asWatts(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// validSamples flattens one hour node into its valid watt values, warning
// about entries present but not coercible.
func validSamples(raw interface{}) []float64 {
	node, ok := asSampleNode(raw)
	if !ok {
		return nil
	}

	var values []float64
	for _, e := range node.entries() {
		if e.raw == nil {
			continue
		}
		watts, ok := asWatts(e.raw)
		if !ok {
			log.Printf("WARNING: skipping invalid sample at minute %s: %v", e.key, e.raw)
			continue
		}
		values = append(values, watts)
	}
	return values
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// daysInMonth uses the zeroth day of the following month, which the time
// package normalizes to the last day of the requested one.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func parseYearMonth(yearMonth string) (int, int, error) {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year-month %q: %v", yearMonth, err)
	}
	return t.Year(), int(t.Month()), nil
}
