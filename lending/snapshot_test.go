package lending_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

func validSnapshotData() lending.SnapshotData {
	returned := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)

	return lending.SnapshotData{
		Libraries:      []lending.Library{{ID: 1, Name: "Central", Address: "Main St 1"}},
		Readers:        []lending.Reader{{ID: 1, FirstName: "Ada", LastName: "Lovelace", Gender: lending.GenderFemale}},
		Authors:        []lending.Author{{ID: 1, FirstName: "Mary", LastName: "Shelley", BirthYear: 1797}},
		Books:          []lending.Book{{ID: 1, Title: "Frankenstein", PublicationYear: 1818}},
		Categories:     []lending.BookCategory{{ID: 1, Name: "Horror"}},
		BookAuthors:    []lending.BookByAuthor{{AuthorID: 1, BookID: 1}},
		BookCategories: []lending.BookByCategory{{CategoryID: 1, BookID: 1}},
		LibraryMembers: []lending.LibraryMember{{LibraryID: 1, ReaderID: 1}},
		BorrowHistory: []lending.BorrowRecord{
			{ID: 2, ReaderID: 1, BookID: 1, BorrowDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 1, ReaderID: 1, BookID: 1, BorrowDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), ReturnDate: &returned},
		},
	}
}

func Test_NewSnapshot_RejectsInvalidData(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(data *lending.SnapshotData)
	}{
		{
			description: "duplicate reader id",
			mutate: func(data *lending.SnapshotData) {
				data.Readers = append(data.Readers, lending.Reader{ID: 1})
			},
		},
		{
			description: "non-positive book id",
			mutate: func(data *lending.SnapshotData) {
				data.Books = append(data.Books, lending.Book{ID: 0})
			},
		},
		{
			description: "borrow without borrow date",
			mutate: func(data *lending.SnapshotData) {
				data.BorrowHistory = append(data.BorrowHistory, lending.BorrowRecord{ID: 9, ReaderID: 1, BookID: 1})
			},
		},
		{
			description: "borrow of unknown book",
			mutate: func(data *lending.SnapshotData) {
				data.BorrowHistory = append(data.BorrowHistory, lending.BorrowRecord{
					ID: 9, ReaderID: 1, BookID: 42, BorrowDate: time.Now(),
				})
			},
		},
		{
			description: "category link to unknown category",
			mutate: func(data *lending.SnapshotData) {
				data.BookCategories = append(data.BookCategories, lending.BookByCategory{CategoryID: 7, BookID: 1})
			},
		},
		{
			description: "member of unknown library",
			mutate: func(data *lending.SnapshotData) {
				data.LibraryMembers = append(data.LibraryMembers, lending.LibraryMember{LibraryID: 3, ReaderID: 1})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			data := validSnapshotData()
			tc.mutate(&data)

			// act
			_, err := lending.NewSnapshot(data)

			// assert
			assert.ErrorIs(t, err, lending.ErrInvalidSnapshot)
		})
	}
}

func Test_Snapshot_BorrowHistory_FiltersAndOrdersByID(t *testing.T) {
	// arrange
	snapshot, err := lending.NewSnapshot(validSnapshotData())
	require.NoError(t, err)

	// act
	all, err := snapshot.BorrowHistory(context.Background(), lending.AllBorrows())
	require.NoError(t, err)

	returned, err := snapshot.BorrowHistory(context.Background(), lending.BuildBorrowFilter().OnlyReturned().Finalize())
	require.NoError(t, err)

	// assert
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)

	require.Len(t, returned, 1)
	assert.Equal(t, int64(1), returned[0].ID)
}

func Test_Snapshot_ReturnsCopies(t *testing.T) {
	// arrange
	snapshot, err := lending.NewSnapshot(validSnapshotData())
	require.NoError(t, err)

	// act
	readers, err := snapshot.Readers(context.Background())
	require.NoError(t, err)
	readers[0].FirstName = "changed"

	borrows, err := snapshot.BorrowHistory(context.Background(), lending.AllBorrows())
	require.NoError(t, err)
	require.NotNil(t, borrows[0].ReturnDate)
	*borrows[0].ReturnDate = time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

	returned, err := snapshot.BorrowHistory(context.Background(), lending.BuildBorrowFilter().OnlyReturned().Finalize())
	require.NoError(t, err)
	*returned[0].ReturnDate = time.Date(1998, time.January, 1, 0, 0, 0, 0, time.UTC)

	againReaders, err := snapshot.Readers(context.Background())
	require.NoError(t, err)

	againBorrows, err := snapshot.BorrowHistory(context.Background(), lending.AllBorrows())
	require.NoError(t, err)

	// assert
	assert.Equal(t, "Ada", againReaders[0].FirstName)
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), *againBorrows[0].ReturnDate)
}

func Test_Snapshot_DoesNotShareMemoryWithItsInput(t *testing.T) {
	// arrange
	deathYear := 1851
	loanStatusID := int64(1)

	data := validSnapshotData()
	data.LoanStatuses = []lending.LoanStatus{{ID: 1, StatusName: "available"}}
	data.Authors[0].DeathYear = &deathYear
	data.Books[0].LoanStatusID = &loanStatusID

	snapshot, err := lending.NewSnapshot(data)
	require.NoError(t, err)

	// act
	deathYear = 2000
	loanStatusID = 99
	*data.BorrowHistory[1].ReturnDate = time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

	authors, err := snapshot.Authors(context.Background())
	require.NoError(t, err)
	*authors[0].DeathYear = 1900

	books, err := snapshot.Books(context.Background())
	require.NoError(t, err)
	*books[0].LoanStatusID = 42

	againAuthors, _ := snapshot.Authors(context.Background())
	againBooks, _ := snapshot.Books(context.Background())
	borrows, _ := snapshot.BorrowHistory(context.Background(), lending.AllBorrows())
	exported := snapshot.Data()

	// assert
	assert.Equal(t, 1851, *againAuthors[0].DeathYear)
	assert.Equal(t, int64(1), *againBooks[0].LoanStatusID)
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), *borrows[0].ReturnDate)
	assert.Equal(t, 1851, *exported.Authors[0].DeathYear)
}

func Test_Snapshot_BorrowHistory_ByAuthorsAndCategories(t *testing.T) {
	// arrange
	data := validSnapshotData()
	data.Authors = append(data.Authors, lending.Author{ID: 2, FirstName: "Bram", LastName: "Stoker", BirthYear: 1847})
	data.Categories = append(data.Categories, lending.BookCategory{ID: 2, Name: "Classics"})
	data.Books = append(data.Books, lending.Book{ID: 2, Title: "Dracula", PublicationYear: 1897})
	data.BookAuthors = append(data.BookAuthors, lending.BookByAuthor{AuthorID: 2, BookID: 2})
	data.BookCategories = append(data.BookCategories,
		lending.BookByCategory{CategoryID: 1, BookID: 2},
		lending.BookByCategory{CategoryID: 2, BookID: 1},
	)
	data.BorrowHistory = append(data.BorrowHistory,
		lending.BorrowRecord{ID: 3, ReaderID: 1, BookID: 2, BorrowDate: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
	)

	snapshot, err := lending.NewSnapshot(data)
	require.NoError(t, err)

	testCases := []struct {
		description string
		filter      lending.BorrowFilter
		expectedIDs []int64
	}{
		{"one author", lending.BuildBorrowFilter().ByAuthors(2).Finalize(), []int64{3}},
		{"several authors", lending.BuildBorrowFilter().ByAuthors(1, 2).Finalize(), []int64{1, 2, 3}},
		{"one category", lending.BuildBorrowFilter().InCategories(2).Finalize(), []int64{1, 2}},
		{"author and category", lending.BuildBorrowFilter().ByAuthors(2).InCategories(2).Finalize(), []int64{}},
		{"author and only returned", lending.BuildBorrowFilter().ByAuthors(1).OnlyReturned().Finalize(), []int64{1}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			borrows, queryErr := snapshot.BorrowHistory(context.Background(), tc.filter)

			// assert
			require.NoError(t, queryErr)

			ids := make([]int64, 0, len(borrows))
			for _, borrow := range borrows {
				ids = append(ids, borrow.ID)
			}

			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func Test_Snapshot_HonorsCanceledContext(t *testing.T) {
	// arrange
	snapshot, err := lending.NewSnapshot(validSnapshotData())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, readersErr := snapshot.Readers(ctx)
	_, borrowsErr := snapshot.BorrowHistory(ctx, lending.AllBorrows())

	// assert
	assert.ErrorIs(t, readersErr, context.Canceled)
	assert.ErrorIs(t, borrowsErr, context.Canceled)
}

func Test_Snapshot_JSON_ReadsWhatItWrote(t *testing.T) {
	// arrange
	snapshot, err := lending.NewSnapshot(validSnapshotData())
	require.NoError(t, err)

	var buf bytes.Buffer

	// act
	require.NoError(t, snapshot.WriteJSON(&buf))
	decoded, err := lending.ReadSnapshotJSON(&buf)

	// assert
	require.NoError(t, err)
	assert.Equal(t, snapshot.Data(), decoded.Data())
}

func Test_ReadSnapshotJSON_RejectsMalformedInput(t *testing.T) {
	_, err := lending.ReadSnapshotJSON(strings.NewReader(`{"readers": [`))

	assert.ErrorIs(t, err, lending.ErrInvalidSnapshot)
}

func Test_Reader_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", lending.Reader{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Plato", lending.Reader{FirstName: "Plato"}.FullName())
}
