package analytics

import (
	"context"
	"slices"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// BorrowDateStats summarizes the borrow and return dates of the whole borrow history.
// Return fields stay zero when no borrow was returned, all fields stay zero for an empty history.
type BorrowDateStats struct {
	Borrows        int       `json:"borrows"`
	Returned       int       `json:"returned"`
	EarliestBorrow time.Time `json:"earliest_borrow"`
	LatestBorrow   time.Time `json:"latest_borrow"`
	MeanBorrow     time.Time `json:"mean_borrow"`
	MedianBorrow   time.Time `json:"median_borrow"`
	EarliestReturn time.Time `json:"earliest_return"`
	LatestReturn   time.Time `json:"latest_return"`
	MeanReturn     time.Time `json:"mean_return"`
}

// BorrowDateStatistics computes range, mean, and median of the borrow dates and the range and mean of
// the return dates.
func (e *Engine) BorrowDateStatistics(ctx context.Context) (BorrowDateStats, error) {
	return observe(ctx, e, OperationBorrowDateStatistics, func(ctx context.Context) (BorrowDateStats, error) {
		borrows, err := e.dataset.BorrowHistory(ctx, lending.AllBorrows())
		if err != nil {
			return BorrowDateStats{}, err
		}

		return ProjectBorrowDateStats(borrows), nil
	})
}

// ProjectBorrowDateStats is the pure projection behind BorrowDateStatistics.
// The median of an even number of dates is the midpoint of the two middle dates.
func ProjectBorrowDateStats(borrows []lending.BorrowRecord) BorrowDateStats {
	if len(borrows) == 0 {
		return BorrowDateStats{}
	}

	borrowDates := make([]time.Time, 0, len(borrows))
	returnDates := make([]time.Time, 0, len(borrows))

	for _, borrow := range borrows {
		borrowDates = append(borrowDates, borrow.BorrowDate.UTC())
		if borrow.ReturnDate != nil {
			returnDates = append(returnDates, borrow.ReturnDate.UTC())
		}
	}

	slices.SortFunc(borrowDates, time.Time.Compare)
	slices.SortFunc(returnDates, time.Time.Compare)

	stats := BorrowDateStats{
		Borrows:        len(borrowDates),
		Returned:       len(returnDates),
		EarliestBorrow: borrowDates[0],
		LatestBorrow:   borrowDates[len(borrowDates)-1],
		MeanBorrow:     meanOf(borrowDates),
		MedianBorrow:   medianOf(borrowDates),
	}

	if len(returnDates) > 0 {
		stats.EarliestReturn = returnDates[0]
		stats.LatestReturn = returnDates[len(returnDates)-1]
		stats.MeanReturn = meanOf(returnDates)
	}

	return stats
}

// meanOf averages sorted dates in whole seconds as offsets from the earliest date, which keeps the sum small.
func meanOf(sorted []time.Time) time.Time {
	base := sorted[0]

	var offsetSeconds int64
	for _, t := range sorted {
		offsetSeconds += int64(t.Sub(base) / time.Second)
	}

	return base.Add(time.Duration(offsetSeconds/int64(len(sorted))) * time.Second)
}

func medianOf(sorted []time.Time) time.Time {
	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}

	lower, upper := sorted[middle-1], sorted[middle]

	return lower.Add(upper.Sub(lower) / 2)
}
