package analytics

import (
	"context"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// GenderBorrowCounts holds the borrow counts of male and female readers.
// Borrows of readers with any other gender value are reported in Unclassified and are not part of Total.
type GenderBorrowCounts struct {
	Male         int `json:"male_count"`
	Female       int `json:"female_count"`
	Unclassified int `json:"unclassified_count"`
}

// Total returns the sum of the male and female counts.
func (c GenderBorrowCounts) Total() int {
	return c.Male + c.Female
}

// BorrowCountsByGender counts borrows by the gender of the borrowing reader.
func (e *Engine) BorrowCountsByGender(ctx context.Context) (GenderBorrowCounts, error) {
	return observe(ctx, e, OperationBorrowCountsByGender, func(ctx context.Context) (GenderBorrowCounts, error) {
		readers, err := e.dataset.Readers(ctx)
		if err != nil {
			return GenderBorrowCounts{}, err
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.AllBorrows())
		if err != nil {
			return GenderBorrowCounts{}, err
		}

		return ProjectGenderBorrowCounts(readers, borrows), nil
	})
}

// ProjectGenderBorrowCounts is the pure projection behind BorrowCountsByGender.
// Gender values match exactly, so "Male" or "" end up unclassified.
func ProjectGenderBorrowCounts(readers []lending.Reader, borrows []lending.BorrowRecord) GenderBorrowCounts {
	genders := make(map[int64]string, len(readers))
	for _, reader := range readers {
		genders[reader.ID] = reader.Gender
	}

	var counts GenderBorrowCounts

	for _, borrow := range borrows {
		switch genders[borrow.ReaderID] {
		case lending.GenderMale:
			counts.Male++
		case lending.GenderFemale:
			counts.Female++
		default:
			counts.Unclassified++
		}
	}

	return counts
}
