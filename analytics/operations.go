package analytics

// Operation names, used as metric labels, span attributes, and keys of benchmark reports.
const (
	OperationMonthlyBorrowTrends        = "monthly_borrow_trends_by_category"
	OperationReaderActivityDuration     = "reader_activity_duration"
	OperationBorrowCountsByGender       = "borrow_counts_by_gender"
	OperationTopReadersForAuthor        = "top_readers_for_author"
	OperationReaderRankingByCategory    = "reader_ranking_by_category"
	OperationAverageBorrowsPerLibrary   = "average_borrows_per_reader_in_library"
	OperationBorrowDateStatistics       = "borrow_date_statistics"
	OperationPublicationYearsByCategory = "publication_years_by_category"
)

// CoreOperations lists the six aggregations in their canonical order.
func CoreOperations() []string {
	return []string{
		OperationMonthlyBorrowTrends,
		OperationReaderActivityDuration,
		OperationBorrowCountsByGender,
		OperationTopReadersForAuthor,
		OperationReaderRankingByCategory,
		OperationAverageBorrowsPerLibrary,
	}
}

// AllOperations lists every operation the Engine offers.
func AllOperations() []string {
	return append(CoreOperations(), OperationBorrowDateStatistics, OperationPublicationYearsByCategory)
}
