package crew

import (
	"testing"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShift_OffsetTwoRestsOnDayThree(t *testing.T) {
	got, err := ResolveShift(2, dates.MustParse("2024-01-01"), dates.MustParse("2024-01-03"))

	require.NoError(t, err)
	assert.Equal(t, shift.Rest, got)
}

func TestResolveShift_Pattern(t *testing.T) {
	start := dates.MustParse("2024-01-01")
	want := []shift.Type{shift.Day, shift.Day, shift.Night, shift.Night, shift.Rest, shift.Rest}

	for i, w := range want {
		got, err := ResolveShift(0, start, start.AddDate(0, 0, i))
		require.NoError(t, err)
		assert.Equal(t, w, got, "day %d", i)
	}
}

func TestResolveShift_PeriodSix(t *testing.T) {
	start := dates.MustParse("2024-01-01")
	for _, offset := range crew.OffsetValues {
		for d := 0; d < 120; d++ {
			a, err := ResolveShift(offset, start, start.AddDate(0, 0, d))
			require.NoError(t, err)
			b, err := ResolveShift(offset, start, start.AddDate(0, 0, d+CycleLength))
			require.NoError(t, err)
			assert.Equal(t, a, b, "offset %d day %d", offset, d)
		}
	}
}

func TestResolveShift_ThreeCrewsCoverDayAndNight(t *testing.T) {
	start := dates.MustParse("2024-01-01")
	// crosses a leap day and a year boundary
	for d := 0; d < 800; d++ {
		target := start.AddDate(0, 0, d)
		seen := map[shift.Type]int{}
		for _, offset := range crew.OffsetValues {
			s, err := ResolveShift(offset, start, target)
			require.NoError(t, err)
			seen[s]++
		}
		assert.Equal(t, 1, seen[shift.Day], "date %s", dates.Format(target))
		assert.Equal(t, 1, seen[shift.Night], "date %s", dates.Format(target))
		assert.Equal(t, 1, seen[shift.Rest], "date %s", dates.Format(target))
	}
}

func TestResolveShift_BeforeCycleStart(t *testing.T) {
	_, err := ResolveShift(0, dates.MustParse("2024-01-10"), dates.MustParse("2024-01-09"))
	assert.ErrorIs(t, err, crew.ErrDateBeforeCycle)
}

func TestResolveShift_InvalidOffset(t *testing.T) {
	_, err := ResolveShift(3, dates.MustParse("2024-01-01"), dates.MustParse("2024-01-02"))
	assert.ErrorIs(t, err, crew.ErrInvalidOffset)
}

func TestResolveShift_StartDay(t *testing.T) {
	start := dates.MustParse("2024-01-01")
	cases := map[int]shift.Type{0: shift.Day, 2: shift.Night, 4: shift.Rest}
	for offset, want := range cases {
		got, err := ResolveShift(offset, start, start)
		require.NoError(t, err)
		assert.Equal(t, want, got, "offset %d", offset)
	}
}
