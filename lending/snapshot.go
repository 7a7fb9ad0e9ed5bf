package lending

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotData is the plain content of a Snapshot, also its JSON representation.
type SnapshotData struct {
	Libraries      []Library        `json:"libraries"`
	Readers        []Reader         `json:"readers"`
	Authors        []Author         `json:"authors"`
	Books          []Book           `json:"books"`
	Categories     []BookCategory   `json:"categories"`
	LoanStatuses   []LoanStatus     `json:"loan_statuses"`
	BookAuthors    []BookByAuthor   `json:"book_authors"`
	BookCategories []BookByCategory `json:"book_categories"`
	LibraryMembers []LibraryMember  `json:"library_members"`
	BorrowHistory  []BorrowRecord   `json:"borrow_history"`
}

// Snapshot is an immutable in-memory Dataset.
// All read methods return copies, so it is safe for concurrent use.
type Snapshot struct {
	data SnapshotData
}

// NewSnapshot validates the given data and creates a Snapshot from a copy of it.
func NewSnapshot(data SnapshotData) (*Snapshot, error) {
	if err := validateSnapshotData(data); err != nil {
		return nil, errors.Join(ErrInvalidSnapshot, err)
	}

	return &Snapshot{data: cloneSnapshotData(data)}, nil
}

// ReadSnapshotJSON decodes and validates a Snapshot from its JSON representation.
func ReadSnapshotJSON(r io.Reader) (*Snapshot, error) {
	var data SnapshotData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Join(ErrInvalidSnapshot, err)
	}

	return NewSnapshot(data)
}

// WriteJSON encodes the Snapshot as JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(s.data)
}

// Data returns a copy of the Snapshot content.
func (s *Snapshot) Data() SnapshotData {
	return cloneSnapshotData(s.data)
}

func (s *Snapshot) Readers(ctx context.Context) ([]Reader, error) {
	return cloneIfAlive(ctx, s.data.Readers)
}

func (s *Snapshot) Authors(ctx context.Context) ([]Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return cloneAuthors(s.data.Authors), nil
}

func (s *Snapshot) Books(ctx context.Context) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return cloneBooks(s.data.Books), nil
}

func (s *Snapshot) Categories(ctx context.Context) ([]BookCategory, error) {
	return cloneIfAlive(ctx, s.data.Categories)
}

func (s *Snapshot) Libraries(ctx context.Context) ([]Library, error) {
	return cloneIfAlive(ctx, s.data.Libraries)
}

func (s *Snapshot) LibraryMembers(ctx context.Context) ([]LibraryMember, error) {
	return cloneIfAlive(ctx, s.data.LibraryMembers)
}

func (s *Snapshot) BookAuthors(ctx context.Context) ([]BookByAuthor, error) {
	return cloneIfAlive(ctx, s.data.BookAuthors)
}

func (s *Snapshot) BookCategories(ctx context.Context) ([]BookByCategory, error) {
	return cloneIfAlive(ctx, s.data.BookCategories)
}

// BorrowHistory returns all borrow records matching the filter, in id order.
func (s *Snapshot) BorrowHistory(ctx context.Context, filter BorrowFilter) ([]BorrowRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filter.IsEmpty() {
		return cloneBorrows(s.data.BorrowHistory), nil
	}

	books := s.booksOf(filter)

	matching := make([]BorrowRecord, 0, len(s.data.BorrowHistory))
	for _, record := range s.data.BorrowHistory {
		if books != nil && !books[record.BookID] {
			continue
		}

		if filter.Matches(record) {
			matching = append(matching, cloneBorrow(record))
		}
	}

	return matching, nil
}

// booksOf resolves the author and category criteria of filter to the set of books they allow.
// It returns nil when filter has neither.
func (s *Snapshot) booksOf(filter BorrowFilter) map[int64]bool {
	authorIDs, categoryIDs := filter.AuthorIDs(), filter.CategoryIDs()
	if len(authorIDs) == 0 && len(categoryIDs) == 0 {
		return nil
	}

	var byAuthor, byCategory map[int64]bool

	if len(authorIDs) > 0 {
		byAuthor = make(map[int64]bool)
		for _, link := range s.data.BookAuthors {
			if slices.Contains(authorIDs, link.AuthorID) {
				byAuthor[link.BookID] = true
			}
		}
	}

	if len(categoryIDs) > 0 {
		byCategory = make(map[int64]bool)
		for _, link := range s.data.BookCategories {
			if slices.Contains(categoryIDs, link.CategoryID) {
				byCategory[link.BookID] = true
			}
		}
	}

	switch {
	case byAuthor == nil:
		return byCategory
	case byCategory == nil:
		return byAuthor
	}

	books := make(map[int64]bool)
	for bookID := range byAuthor {
		if byCategory[bookID] {
			books[bookID] = true
		}
	}

	return books
}

func cloneIfAlive[T any](ctx context.Context, items []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return slices.Clone(items), nil
}

func cloneSnapshotData(data SnapshotData) SnapshotData {
	borrows := cloneBorrows(data.BorrowHistory)
	slices.SortStableFunc(borrows, func(a, b BorrowRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return SnapshotData{
		Libraries:      slices.Clone(data.Libraries),
		Readers:        slices.Clone(data.Readers),
		Authors:        cloneAuthors(data.Authors),
		Books:          cloneBooks(data.Books),
		Categories:     slices.Clone(data.Categories),
		LoanStatuses:   slices.Clone(data.LoanStatuses),
		BookAuthors:    slices.Clone(data.BookAuthors),
		BookCategories: slices.Clone(data.BookCategories),
		LibraryMembers: slices.Clone(data.LibraryMembers),
		BorrowHistory:  borrows,
	}
}

// The clone helpers copy the values behind pointer fields, so no caller shares memory with a Snapshot.

func cloneBorrows(borrows []BorrowRecord) []BorrowRecord {
	return cloneEach(borrows, cloneBorrow)
}

func cloneBorrow(br BorrowRecord) BorrowRecord {
	br.ReturnDate = clonePtr(br.ReturnDate)
	return br
}

func cloneAuthors(authors []Author) []Author {
	return cloneEach(authors, func(a Author) Author {
		a.DeathYear = clonePtr(a.DeathYear)
		return a
	})
}

func cloneBooks(books []Book) []Book {
	return cloneEach(books, func(b Book) Book {
		b.LoanStatusID = clonePtr(b.LoanStatusID)
		return b
	})
}

func cloneEach[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}

	cloned := make([]T, len(items))
	for i, item := range items {
		cloned[i] = clone(item)
	}

	return cloned
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func validateSnapshotData(data SnapshotData) error {
	libraries, err := uniqueIDs("library", data.Libraries, func(l Library) int64 { return l.ID })
	if err != nil {
		return err
	}

	readers, err := uniqueIDs("reader", data.Readers, func(r Reader) int64 { return r.ID })
	if err != nil {
		return err
	}

	authors, err := uniqueIDs("author", data.Authors, func(a Author) int64 { return a.ID })
	if err != nil {
		return err
	}

	books, err := uniqueIDs("book", data.Books, func(b Book) int64 { return b.ID })
	if err != nil {
		return err
	}

	categories, err := uniqueIDs("category", data.Categories, func(c BookCategory) int64 { return c.ID })
	if err != nil {
		return err
	}

	loanStatuses, err := uniqueIDs("loan status", data.LoanStatuses, func(ls LoanStatus) int64 { return ls.ID })
	if err != nil {
		return err
	}

	if _, err = uniqueIDs("borrow record", data.BorrowHistory, func(br BorrowRecord) int64 { return br.ID }); err != nil {
		return err
	}

	for _, book := range data.Books {
		if book.LoanStatusID != nil && !loanStatuses[*book.LoanStatusID] {
			return fmt.Errorf("book %d references unknown loan status %d", book.ID, *book.LoanStatusID)
		}
	}

	for _, link := range data.BookAuthors {
		if !authors[link.AuthorID] || !books[link.BookID] {
			return fmt.Errorf("book author link %d/%d references unknown entities", link.BookID, link.AuthorID)
		}
	}

	for _, link := range data.BookCategories {
		if !categories[link.CategoryID] || !books[link.BookID] {
			return fmt.Errorf("book category link %d/%d references unknown entities", link.BookID, link.CategoryID)
		}
	}

	for _, member := range data.LibraryMembers {
		if !libraries[member.LibraryID] || !readers[member.ReaderID] {
			return fmt.Errorf("library member %d/%d references unknown entities", member.LibraryID, member.ReaderID)
		}
	}

	for _, record := range data.BorrowHistory {
		if record.BorrowDate.IsZero() {
			return fmt.Errorf("borrow record %d has no borrow date", record.ID)
		}

		if !readers[record.ReaderID] || !books[record.BookID] {
			return fmt.Errorf("borrow record %d references unknown reader or book", record.ID)
		}
	}

	return nil
}

func uniqueIDs[T any](entity string, items []T, id func(T) int64) (map[int64]bool, error) {
	seen := make(map[int64]bool, len(items))

	for _, item := range items {
		itemID := id(item)
		if itemID <= 0 {
			return nil, fmt.Errorf("%s has non-positive id %d", entity, itemID)
		}

		if seen[itemID] {
			return nil, fmt.Errorf("duplicate %s id %d", entity, itemID)
		}

		seen[itemID] = true
	}

	return seen, nil
}

// Ensure Snapshot implements Dataset.
var _ Dataset = (*Snapshot)(nil)
