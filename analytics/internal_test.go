package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

func Test_FocusRatio_RejectsZeroCategories(t *testing.T) {
	ratio, err := focusRatio(3, 0)

	assert.ErrorIs(t, err, lending.ErrInvariantViolated)
	assert.Zero(t, ratio)
}

func Test_FocusRatio(t *testing.T) {
	ratio, err := focusRatio(3, 4)

	assert.NoError(t, err)
	assert.InDelta(t, 0.75, ratio, 1e-9)
}

func Test_AverageOf_GuardsZeroCount(t *testing.T) {
	assert.Zero(t, averageOf(5, 0))
	assert.InDelta(t, 2.5, averageOf(5, 2), 1e-9)
}

func Test_DaysBetween_IsSymmetric(t *testing.T) {
	earlier := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 29, daysBetween(earlier, later))
	assert.Equal(t, 29, daysBetween(later, earlier))
	assert.Zero(t, daysBetween(earlier, earlier))
}

func Test_FirstOfMonth_NormalizesToUTC(t *testing.T) {
	vienna := time.FixedZone("CET", 3600)
	local := time.Date(2024, time.March, 1, 0, 30, 0, 0, vienna)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), firstOfMonth(local))
}
