package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/analytics"
)

func Test_filterGenderCounts(t *testing.T) {
	counts := analytics.GenderBorrowCounts{Male: 4, Female: 7, Unclassified: 2}

	all, err := filterGenderCounts(counts, nil)
	require.NoError(t, err)
	assert.Equal(t, []genderCount{{Gender: "male", BorrowCount: 4}, {Gender: "female", BorrowCount: 7}}, all)

	femaleOnly, err := filterGenderCounts(counts, []string{"female"})
	require.NoError(t, err)
	assert.Equal(t, []genderCount{{Gender: "female", BorrowCount: 7}}, femaleOnly)

	_, err = filterGenderCounts(counts, []string{"female", "Male"})
	assert.ErrorIs(t, err, errUnknownGender)
}

func Test_filterReaderActivity(t *testing.T) {
	rows := []analytics.ReaderActivity{{ReaderID: 1, DurationDays: 60}, {ReaderID: 2, DurationDays: 10}, {ReaderID: 3, DurationDays: 0}}
	limit := 10
	zero := 0

	assert.Equal(t, rows, filterReaderActivity(rows, nil))
	assert.Equal(t, rows[1:], filterReaderActivity(rows, &limit))
	assert.Equal(t, rows[2:], filterReaderActivity(rows, &zero))
	assert.Len(t, rows, 3, "the engine result must not be modified")
}

func Test_filterTopReadersAndCategoryRanking_MinBooks(t *testing.T) {
	readers := []analytics.AuthorReaderCount{{ReaderID: 1, DistinctBooks: 3}, {ReaderID: 2, DistinctBooks: 1}}
	ranking := []analytics.CategoryReaderRank{{ReaderID: 1, DistinctBooksInCategory: 1}, {ReaderID: 2, DistinctBooksInCategory: 2}}

	assert.Equal(t, readers, filterTopReaders(readers, 0))
	assert.Equal(t, readers[:1], filterTopReaders(readers, 2))
	assert.Equal(t, ranking[1:], filterCategoryRanking(ranking, 2))
	assert.Empty(t, filterCategoryRanking(ranking, 5))
}

func Test_sortCategoryRanking(t *testing.T) {
	ranking := []analytics.CategoryReaderRank{
		{ReaderID: 1, Ratio: 1},
		{ReaderID: 4, Ratio: 1},
		{ReaderID: 2, Ratio: 2.0 / 3.0},
		{ReaderID: 3, Ratio: 0.25},
	}

	testCases := []struct {
		order       string
		expectedIDs []int64
	}{
		{order: "asc", expectedIDs: []int64{3, 2, 1, 4}},
		{order: "desc", expectedIDs: []int64{1, 4, 2, 3}},
		{order: "none", expectedIDs: []int64{1, 4, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.order, func(t *testing.T) {
			sorted := sortCategoryRanking(ranking, tc.order)

			ids := make([]int64, 0, len(sorted))
			for _, row := range sorted {
				ids = append(ids, row.ReaderID)
			}

			assert.Equal(t, tc.expectedIDs, ids)
		})
	}

	assert.Equal(t, int64(1), ranking[0].ReaderID, "the engine result must not be reordered")
}

func Test_filterLibraryAverages(t *testing.T) {
	rows := []analytics.LibraryBorrowAverage{
		{LibraryID: 1, LibraryName: "Central", Average: 2},
		{LibraryID: 2, LibraryName: "Harbor", Average: 1.5},
		{LibraryID: 3, LibraryName: "Village", Average: 1},
	}
	low, high := 1.2, 1.8

	assert.Equal(t, rows, filterLibraryAverages(rows, "", nil, nil))
	assert.Equal(t, rows[1:2], filterLibraryAverages(rows, "Harbor", nil, nil))
	assert.Equal(t, rows[1:2], filterLibraryAverages(rows, "", &low, &high))
	assert.Equal(t, rows[:2], filterLibraryAverages(rows, "", &low, nil))
	assert.Empty(t, filterLibraryAverages(rows, "Village", &low, nil))
}

func Test_filterMonthlyTrends(t *testing.T) {
	january := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	february := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	rows := []analytics.MonthlyCategoryTrend{
		{Month: january, CategoryID: 1, BorrowCount: 3},
		{Month: february, CategoryID: 1, BorrowCount: 1},
	}

	all, err := filterMonthlyTrends(rows, "")
	require.NoError(t, err)
	assert.Equal(t, rows, all)

	onlyFebruary, err := filterMonthlyTrends(rows, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, rows[1:], onlyFebruary)

	_, err = filterMonthlyTrends(rows, "February")
	assert.ErrorIs(t, err, errInvalidMonth)
}
