package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	got := SortedKeys([]string{"slot:b", "employee:7:2024-02-01", "slot:b", "day:x"})
	assert.Equal(t, []string{"day:x", "employee:7:2024-02-01", "slot:b"}, got)
	assert.Empty(t, SortedKeys(nil))
}

func TestKeys(t *testing.T) {
	d := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "employee:7:2024-02-01", EmployeeDateKey(7, d))
	assert.Equal(t, "day:packaging:2024-02-01", DayKey(d, "packaging"))
	assert.Equal(t, "slot:abc", SlotKey("abc"))
}
