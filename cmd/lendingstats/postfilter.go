package main

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const monthLayout = "2006-01"

const (
	sortAscending  = "asc"
	sortDescending = "desc"
)

var (
	errUnknownGender = errors.New("unknown gender, expected male or female")
	errInvalidMonth  = errors.New("invalid month, expected YYYY-MM")
)

// postFilters narrow an aggregation result for display. They never change what the engine computed.
type postFilters struct {
	genders     []string
	maxDuration *int
	minBooks    int
	library     string
	minAverage  *float64
	maxAverage  *float64
	month       string
	sortOrder   string
}

type genderCount struct {
	Gender      string `json:"gender"`
	BorrowCount int    `json:"borrow_count"`
}

// filterGenderCounts lists the male and female counts, restricted to genders when given.
func filterGenderCounts(counts analytics.GenderBorrowCounts, genders []string) ([]genderCount, error) {
	all := []genderCount{
		{Gender: lending.GenderMale, BorrowCount: counts.Male},
		{Gender: lending.GenderFemale, BorrowCount: counts.Female},
	}

	if len(genders) == 0 {
		return all, nil
	}

	for _, gender := range genders {
		if gender != lending.GenderMale && gender != lending.GenderFemale {
			return nil, fmt.Errorf("%w: %q", errUnknownGender, gender)
		}
	}

	return keep(all, func(c genderCount) bool { return slices.Contains(genders, c.Gender) }), nil
}

func filterReaderActivity(rows []analytics.ReaderActivity, maxDuration *int) []analytics.ReaderActivity {
	if maxDuration == nil {
		return rows
	}

	return keep(rows, func(r analytics.ReaderActivity) bool { return r.DurationDays <= *maxDuration })
}

func filterTopReaders(rows []analytics.AuthorReaderCount, minBooks int) []analytics.AuthorReaderCount {
	return keep(rows, func(r analytics.AuthorReaderCount) bool { return r.DistinctBooks >= minBooks })
}

func filterCategoryRanking(rows []analytics.CategoryReaderRank, minBooks int) []analytics.CategoryReaderRank {
	return keep(rows, func(r analytics.CategoryReaderRank) bool { return r.DistinctBooksInCategory >= minBooks })
}

// sortCategoryRanking orders by ratio, ties keep the reader id order. Any other order keeps the input.
func sortCategoryRanking(rows []analytics.CategoryReaderRank, order string) []analytics.CategoryReaderRank {
	if order != sortAscending && order != sortDescending {
		return rows
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b analytics.CategoryReaderRank) int {
		byRatio := cmp.Compare(a.Ratio, b.Ratio)
		if order == sortDescending {
			byRatio = -byRatio
		}

		return cmp.Or(byRatio, cmp.Compare(a.ReaderID, b.ReaderID))
	})

	return sorted
}

func filterLibraryAverages(
	rows []analytics.LibraryBorrowAverage,
	library string,
	minAverage, maxAverage *float64,
) []analytics.LibraryBorrowAverage {

	return keep(rows, func(r analytics.LibraryBorrowAverage) bool {
		switch {
		case library != "" && r.LibraryName != library:
			return false
		case minAverage != nil && r.Average < *minAverage:
			return false
		case maxAverage != nil && r.Average > *maxAverage:
			return false
		default:
			return true
		}
	})
}

func filterMonthlyTrends(rows []analytics.MonthlyCategoryTrend, month string) ([]analytics.MonthlyCategoryTrend, error) {
	if month == "" {
		return rows, nil
	}

	wanted, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidMonth, month)
	}

	return keep(rows, func(r analytics.MonthlyCategoryTrend) bool { return r.Month.Equal(wanted) }), nil
}

func keep[T any](rows []T, predicate func(T) bool) []T {
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		if predicate(row) {
			kept = append(kept, row)
		}
	}

	return kept
}
