package database

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Transactor runs fn as one atomic unit. Keys name the logical rows the unit
// serialises on; implementations acquire them in sorted order so that two
// units never wait on each other in opposite order. WithinTx must not be nested.
type Transactor interface {
	WithinTx(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// SortedKeys returns keys deduplicated and sorted.
func SortedKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// EmployeeDateKey serialises writes touching one employee's day.
func EmployeeDateKey(employeeID int64, date time.Time) string {
	return fmt.Sprintf("employee:%d:%s", employeeID, date.Format("2006-01-02"))
}

// SlotKey serialises writes touching one roster slot.
func SlotKey(slot string) string {
	return "slot:" + slot
}

// DayKey serialises locking of one (date, environment) roster.
func DayKey(date time.Time, environment string) string {
	return fmt.Sprintf("day:%s:%s", environment, date.Format("2006-01-02"))
}
