package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// CategoryReaderRank describes how focused a reader is on one category.
//
// Ratio is DistinctBooksInCategory divided by DistinctCategories, where DistinctCategories counts every
// category of the in-category books the reader borrowed. It is a derived metric, not an average of borrows.
type CategoryReaderRank struct {
	ReaderID                int64   `json:"reader_id"`
	ReaderName              string  `json:"reader_name"`
	DistinctBooksInCategory int     `json:"distinct_books_in_category"`
	DistinctCategories      int     `json:"distinct_categories"`
	Ratio                   float64 `json:"ratio"`
}

// ReaderRankingByCategory ranks the readers of a category by their Ratio.
//
// It fails with lending.ErrInvalidFilterID for a non-positive id and with lending.ErrCategoryNotFound
// when no such category exists.
func (e *Engine) ReaderRankingByCategory(ctx context.Context, categoryID int64) ([]CategoryReaderRank, error) {
	return observe(ctx, e, OperationReaderRankingByCategory, func(ctx context.Context) ([]CategoryReaderRank, error) {
		if err := validateFilterID(categoryID); err != nil {
			return nil, err
		}

		categories, err := e.dataset.Categories(ctx)
		if err != nil {
			return nil, err
		}

		if !slices.ContainsFunc(categories, func(c lending.BookCategory) bool { return c.ID == categoryID }) {
			return nil, lending.ErrCategoryNotFound
		}

		bookCategories, err := e.dataset.BookCategories(ctx)
		if err != nil {
			return nil, err
		}

		if len(booksInCategory(bookCategories, categoryID)) == 0 {
			return []CategoryReaderRank{}, nil
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.BuildBorrowFilter().InCategories(categoryID).Finalize())
		if err != nil {
			return nil, err
		}

		readers, err := e.dataset.Readers(ctx)
		if err != nil {
			return nil, err
		}

		return ProjectReaderRankingByCategory(categoryID, bookCategories, readers, borrows)
	})
}

// ProjectReaderRankingByCategory is the pure projection behind ReaderRankingByCategory.
// Rows are ordered by ratio descending, then reader id.
//
// Every counted book belongs to categoryID, so a reader without any category is impossible on valid
// data. It is reported as lending.ErrInvariantViolated instead of producing an infinite ratio.
func ProjectReaderRankingByCategory(
	categoryID int64,
	bookCategories []lending.BookByCategory,
	readers []lending.Reader,
	borrows []lending.BorrowRecord,
) ([]CategoryReaderRank, error) {

	books := booksInCategory(bookCategories, categoryID)
	categoriesByBook := categoryIDsByBook(bookCategories)
	names := readerNames(readers)
	booksByReader := make(map[int64]map[int64]struct{})

	for _, borrow := range borrows {
		if _, ok := books[borrow.BookID]; !ok {
			continue
		}

		if booksByReader[borrow.ReaderID] == nil {
			booksByReader[borrow.ReaderID] = make(map[int64]struct{})
		}

		booksByReader[borrow.ReaderID][borrow.BookID] = struct{}{}
	}

	ranks := make([]CategoryReaderRank, 0, len(booksByReader))
	for readerID, readerBooks := range booksByReader {
		categories := make(map[int64]struct{})
		for bookID := range readerBooks {
			for _, id := range categoriesByBook[bookID] {
				categories[id] = struct{}{}
			}
		}

		ratio, err := focusRatio(len(readerBooks), len(categories))
		if err != nil {
			return nil, fmt.Errorf("reader %d in category %d: %w", readerID, categoryID, err)
		}

		ranks = append(ranks, CategoryReaderRank{
			ReaderID:                readerID,
			ReaderName:              names[readerID],
			DistinctBooksInCategory: len(readerBooks),
			DistinctCategories:      len(categories),
			Ratio:                   ratio,
		})
	}

	slices.SortFunc(ranks, func(a, b CategoryReaderRank) int {
		if c := cmp.Compare(b.Ratio, a.Ratio); c != 0 {
			return c
		}

		return cmp.Compare(a.ReaderID, b.ReaderID)
	})

	return ranks, nil
}

func focusRatio(books, categories int) (float64, error) {
	if categories == 0 {
		return 0, fmt.Errorf("%w: %d borrowed books without any category", lending.ErrInvariantViolated, books)
	}

	return float64(books) / float64(categories), nil
}
