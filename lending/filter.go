package lending

import (
	"slices"
	"time"
)

/***** BorrowFilter *****/

// BorrowFilter narrows a borrow history query. All criteria are combined with AND,
// an empty id list does not restrict the result.
type BorrowFilter struct {
	readerIDs     []int64
	bookIDs       []int64
	authorIDs     []int64
	categoryIDs   []int64
	borrowedFrom  *time.Time
	borrowedUntil *time.Time
	onlyReturned  bool
}

func (f BorrowFilter) ReaderIDs() []int64 {
	return f.readerIDs
}

func (f BorrowFilter) BookIDs() []int64 {
	return f.bookIDs
}

func (f BorrowFilter) AuthorIDs() []int64 {
	return f.authorIDs
}

func (f BorrowFilter) CategoryIDs() []int64 {
	return f.categoryIDs
}

func (f BorrowFilter) BorrowedFrom() *time.Time {
	return f.borrowedFrom
}

func (f BorrowFilter) BorrowedUntil() *time.Time {
	return f.borrowedUntil
}

func (f BorrowFilter) OnlyReturned() bool {
	return f.onlyReturned
}

// IsEmpty reports whether the filter matches every borrow record.
func (f BorrowFilter) IsEmpty() bool {
	return len(f.readerIDs) == 0 &&
		len(f.bookIDs) == 0 &&
		len(f.authorIDs) == 0 &&
		len(f.categoryIDs) == 0 &&
		f.borrowedFrom == nil &&
		f.borrowedUntil == nil &&
		!f.onlyReturned
}

// Matches evaluates the filter against a single record, for in-memory datasets.
// Author and category criteria need the book links, so Matches ignores them.
func (f BorrowFilter) Matches(record BorrowRecord) bool {
	if len(f.readerIDs) > 0 {
		if _, found := slices.BinarySearch(f.readerIDs, record.ReaderID); !found {
			return false
		}
	}

	if len(f.bookIDs) > 0 {
		if _, found := slices.BinarySearch(f.bookIDs, record.BookID); !found {
			return false
		}
	}

	if f.borrowedFrom != nil && record.BorrowDate.Before(*f.borrowedFrom) {
		return false
	}

	if f.borrowedUntil != nil && !record.BorrowDate.Before(*f.borrowedUntil) {
		return false
	}

	if f.onlyReturned && !record.IsReturned() {
		return false
	}

	return true
}

/***** BorrowFilterBuilder *****/

// BorrowFilterBuilder builds a BorrowFilter to be translated by Dataset implementations into their query language.
//
// The id lists are sanitized on every call:
//   - removing ids <= 0
//   - sorting the ids
//   - removing duplicate ids
type BorrowFilterBuilder interface {
	// ForReaders restricts the result to borrows of any of the given readers.
	ForReaders(readerIDs ...int64) BorrowFilterBuilder

	// ForBooks restricts the result to borrows of any of the given books.
	ForBooks(bookIDs ...int64) BorrowFilterBuilder

	// ByAuthors restricts the result to borrows of books written by any of the given authors.
	ByAuthors(authorIDs ...int64) BorrowFilterBuilder

	// InCategories restricts the result to borrows of books in any of the given categories.
	InCategories(categoryIDs ...int64) BorrowFilterBuilder

	// BorrowedFrom restricts the result to borrows with borrow_date >= from.
	BorrowedFrom(from time.Time) BorrowFilterBuilder

	// BorrowedUntil restricts the result to borrows with borrow_date < until.
	BorrowedUntil(until time.Time) BorrowFilterBuilder

	// OnlyReturned restricts the result to closed loans.
	OnlyReturned() BorrowFilterBuilder

	// Finalize returns the BorrowFilter.
	Finalize() BorrowFilter
}

type borrowFilterBuilder struct {
	filter BorrowFilter
}

// BuildBorrowFilter creates a BorrowFilterBuilder which must eventually be finalized with Finalize().
func BuildBorrowFilter() BorrowFilterBuilder {
	return borrowFilterBuilder{}
}

// AllBorrows returns the empty BorrowFilter.
func AllBorrows() BorrowFilter {
	return BorrowFilter{}
}

func (fb borrowFilterBuilder) ForReaders(readerIDs ...int64) BorrowFilterBuilder {
	fb.filter.readerIDs = sanitizeIDs(append(slices.Clone(fb.filter.readerIDs), readerIDs...))

	return fb
}

func (fb borrowFilterBuilder) ForBooks(bookIDs ...int64) BorrowFilterBuilder {
	fb.filter.bookIDs = sanitizeIDs(append(slices.Clone(fb.filter.bookIDs), bookIDs...))

	return fb
}

func (fb borrowFilterBuilder) ByAuthors(authorIDs ...int64) BorrowFilterBuilder {
	fb.filter.authorIDs = sanitizeIDs(append(slices.Clone(fb.filter.authorIDs), authorIDs...))

	return fb
}

func (fb borrowFilterBuilder) InCategories(categoryIDs ...int64) BorrowFilterBuilder {
	fb.filter.categoryIDs = sanitizeIDs(append(slices.Clone(fb.filter.categoryIDs), categoryIDs...))

	return fb
}

func (fb borrowFilterBuilder) BorrowedFrom(from time.Time) BorrowFilterBuilder {
	fb.filter.borrowedFrom = &from

	return fb
}

func (fb borrowFilterBuilder) BorrowedUntil(until time.Time) BorrowFilterBuilder {
	fb.filter.borrowedUntil = &until

	return fb
}

func (fb borrowFilterBuilder) OnlyReturned() BorrowFilterBuilder {
	fb.filter.onlyReturned = true

	return fb
}

func (fb borrowFilterBuilder) Finalize() BorrowFilter {
	return fb.filter
}

func sanitizeIDs(ids []int64) []int64 {
	ids = slices.DeleteFunc(ids, func(id int64) bool {
		return id <= 0
	})
	slices.Sort(ids)
	ids = slices.Compact(ids)
	ids = slices.Clip(ids)

	return ids
}
