package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// Builder assembles a lending dataset entity by entity with generated ids.
// It is meant for tests, so it favors short call sites over completeness.
type Builder struct {
	data   lending.SnapshotData
	nextID map[string]int64
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nextID: make(map[string]int64)}
}

func (b *Builder) id(entity string) int64 {
	b.nextID[entity]++
	return b.nextID[entity]
}

// Library adds a library and returns its id.
func (b *Builder) Library(name string) int64 {
	id := b.id("library")
	b.data.Libraries = append(b.data.Libraries, lending.Library{ID: id, Name: name, Address: name + " street 1"})

	return id
}

// Reader adds a reader and returns its id.
func (b *Builder) Reader(firstName, lastName, gender string) int64 {
	id := b.id("reader")
	b.data.Readers = append(b.data.Readers, lending.Reader{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Gender:    gender,
		City:      "Springfield",
	})

	return id
}

// Author adds an author and returns its id.
func (b *Builder) Author(firstName, lastName string) int64 {
	id := b.id("author")
	b.data.Authors = append(b.data.Authors, lending.Author{ID: id, FirstName: firstName, LastName: lastName, BirthYear: 1900})

	return id
}

// Category adds a book category and returns its id.
func (b *Builder) Category(name string) int64 {
	id := b.id("category")
	b.data.Categories = append(b.data.Categories, lending.BookCategory{ID: id, Name: name})

	return id
}

// Book adds a book and returns its id.
func (b *Builder) Book(title string, publicationYear int) int64 {
	id := b.id("book")
	b.data.Books = append(b.data.Books, lending.Book{ID: id, Title: title, PublicationYear: publicationYear})

	return id
}

// WrittenBy links a book to its authors.
func (b *Builder) WrittenBy(bookID int64, authorIDs ...int64) *Builder {
	for _, authorID := range authorIDs {
		b.data.BookAuthors = append(b.data.BookAuthors, lending.BookByAuthor{AuthorID: authorID, BookID: bookID})
	}

	return b
}

// InCategories links a book to its categories.
func (b *Builder) InCategories(bookID int64, categoryIDs ...int64) *Builder {
	for _, categoryID := range categoryIDs {
		b.data.BookCategories = append(b.data.BookCategories, lending.BookByCategory{CategoryID: categoryID, BookID: bookID})
	}

	return b
}

// Members registers readers as members of a library.
func (b *Builder) Members(libraryID int64, readerIDs ...int64) *Builder {
	for _, readerID := range readerIDs {
		b.data.LibraryMembers = append(b.data.LibraryMembers, lending.LibraryMember{LibraryID: libraryID, ReaderID: readerID})
	}

	return b
}

// Borrow adds an open loan, borrowed is formatted as 2006-01-02.
func (b *Builder) Borrow(readerID, bookID int64, borrowed string) int64 {
	id := b.id("borrow")
	b.data.BorrowHistory = append(b.data.BorrowHistory, lending.BorrowRecord{
		ID:         id,
		ReaderID:   readerID,
		BookID:     bookID,
		BorrowDate: Date(borrowed),
	})

	return id
}

// BorrowReturned adds a closed loan, both dates are formatted as 2006-01-02.
func (b *Builder) BorrowReturned(readerID, bookID int64, borrowed, returned string) int64 {
	id := b.Borrow(readerID, bookID, borrowed)
	returnDate := Date(returned)
	b.data.BorrowHistory[len(b.data.BorrowHistory)-1].ReturnDate = &returnDate

	return id
}

// Data returns the assembled content.
func (b *Builder) Data() lending.SnapshotData {
	return b.data
}

// Snapshot builds the lending.Snapshot and fails the test if the data is invalid.
func (b *Builder) Snapshot(t testing.TB) *lending.Snapshot {
	t.Helper()

	snapshot, err := lending.NewSnapshot(b.data)
	require.NoError(t, err, "building the fixture snapshot should not fail")

	return snapshot
}

// Date parses a 2006-01-02 date as UTC midnight and panics on malformed input.
func Date(value string) time.Time {
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic("fixtures: malformed date " + value)
	}

	return date
}
