package analytics

import (
	"cmp"
	"context"
	"slices"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// AuthorReaderCount is the number of distinct books of one author a reader has borrowed.
type AuthorReaderCount struct {
	ReaderID      int64  `json:"reader_id"`
	ReaderName    string `json:"reader_name"`
	DistinctBooks int    `json:"distinct_books"`
}

// TopReadersForAuthor ranks the readers of an author by the number of distinct books of
// that author they borrowed.
//
// It fails with lending.ErrInvalidFilterID for a non-positive id and with lending.ErrAuthorNotFound
// when no such author exists. An author without books yields an empty result.
func (e *Engine) TopReadersForAuthor(ctx context.Context, authorID int64) ([]AuthorReaderCount, error) {
	return observe(ctx, e, OperationTopReadersForAuthor, func(ctx context.Context) ([]AuthorReaderCount, error) {
		if err := validateFilterID(authorID); err != nil {
			return nil, err
		}

		authors, err := e.dataset.Authors(ctx)
		if err != nil {
			return nil, err
		}

		if !slices.ContainsFunc(authors, func(a lending.Author) bool { return a.ID == authorID }) {
			return nil, lending.ErrAuthorNotFound
		}

		bookAuthors, err := e.dataset.BookAuthors(ctx)
		if err != nil {
			return nil, err
		}

		if len(booksOfAuthor(bookAuthors, authorID)) == 0 {
			return []AuthorReaderCount{}, nil
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.BuildBorrowFilter().ByAuthors(authorID).Finalize())
		if err != nil {
			return nil, err
		}

		readers, err := e.dataset.Readers(ctx)
		if err != nil {
			return nil, err
		}

		return ProjectTopReadersForAuthor(authorID, bookAuthors, readers, borrows), nil
	})
}

// ProjectTopReadersForAuthor is the pure projection behind TopReadersForAuthor.
// Repeated borrows of the same book count once. Rows are ordered by count descending, then reader id.
func ProjectTopReadersForAuthor(
	authorID int64,
	bookAuthors []lending.BookByAuthor,
	readers []lending.Reader,
	borrows []lending.BorrowRecord,
) []AuthorReaderCount {

	books := booksOfAuthor(bookAuthors, authorID)
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

	counts := make([]AuthorReaderCount, 0, len(booksByReader))
	for readerID, readerBooks := range booksByReader {
		counts = append(counts, AuthorReaderCount{
			ReaderID:      readerID,
			ReaderName:    names[readerID],
			DistinctBooks: len(readerBooks),
		})
	}

	slices.SortFunc(counts, func(a, b AuthorReaderCount) int {
		if c := cmp.Compare(b.DistinctBooks, a.DistinctBooks); c != 0 {
			return c
		}

		return cmp.Compare(a.ReaderID, b.ReaderID)
	})

	return counts
}
