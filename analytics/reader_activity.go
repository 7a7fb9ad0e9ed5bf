package analytics

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// ReaderActivity spans a reader's first borrow and last return.
type ReaderActivity struct {
	ReaderID     int64     `json:"reader_id"`
	ReaderName   string    `json:"reader_name"`
	FirstBorrow  time.Time `json:"first_borrow"`
	LastReturn   time.Time `json:"last_return"`
	DurationDays int       `json:"duration_days"`
}

// ReaderActivityDuration computes, per reader, the whole days between the first borrow and the last return.
func (e *Engine) ReaderActivityDuration(ctx context.Context) ([]ReaderActivity, error) {
	return observe(ctx, e, OperationReaderActivityDuration, func(ctx context.Context) ([]ReaderActivity, error) {
		readers, err := e.dataset.Readers(ctx)
		if err != nil {
			return nil, err
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.AllBorrows())
		if err != nil {
			return nil, err
		}

		return ProjectReaderActivity(readers, borrows), nil
	})
}

// ProjectReaderActivity is the pure projection behind ReaderActivityDuration.
//
// The first borrow is the earliest borrow date, the last return the latest recorded return date, each
// taken independently. With concurrent loans the last return can lie before a later borrow, which is why
// the duration is the absolute distance of both dates. Readers without any return date have no duration
// and are omitted. Rows are ordered by duration descending, then reader id.
func ProjectReaderActivity(readers []lending.Reader, borrows []lending.BorrowRecord) []ReaderActivity {
	names := readerNames(readers)
	byReader := make(map[int64]*ReaderActivity)
	hasReturn := make(map[int64]bool)

	for _, borrow := range borrows {
		borrowDay := dayOf(borrow.BorrowDate)

		activity, ok := byReader[borrow.ReaderID]
		if !ok {
			activity = &ReaderActivity{ReaderID: borrow.ReaderID, ReaderName: names[borrow.ReaderID], FirstBorrow: borrowDay}
			byReader[borrow.ReaderID] = activity
		}

		if borrowDay.Before(activity.FirstBorrow) {
			activity.FirstBorrow = borrowDay
		}

		if borrow.ReturnDate == nil {
			continue
		}

		returnDay := dayOf(*borrow.ReturnDate)
		if !hasReturn[borrow.ReaderID] || returnDay.After(activity.LastReturn) {
			activity.LastReturn = returnDay
			hasReturn[borrow.ReaderID] = true
		}
	}

	activities := make([]ReaderActivity, 0, len(hasReturn))
	for readerID, activity := range byReader {
		if !hasReturn[readerID] {
			continue
		}

		activity.DurationDays = daysBetween(activity.FirstBorrow, activity.LastReturn)
		activities = append(activities, *activity)
	}

	slices.SortFunc(activities, func(a, b ReaderActivity) int {
		if c := cmp.Compare(b.DurationDays, a.DurationDays); c != 0 {
			return c
		}

		return cmp.Compare(a.ReaderID, b.ReaderID)
	})

	return activities
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the non-negative number of whole days between two UTC midnights.
func daysBetween(a, b time.Time) int {
	later, earlier := a, b
	if earlier.After(later) {
		later, earlier = earlier, later
	}

	return int(later.Sub(earlier).Hours() / 24)
}
