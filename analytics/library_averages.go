package analytics

import (
	"cmp"
	"context"
	"slices"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// LibraryBorrowAverage relates the borrows of a library's members to the number of members.
type LibraryBorrowAverage struct {
	LibraryID    int64   `json:"library_id"`
	LibraryName  string  `json:"library_name"`
	TotalReaders int     `json:"total_readers"`
	TotalBorrows int     `json:"total_borrows"`
	Average      float64 `json:"avg_borrows_per_reader"`
}

// AverageBorrowsPerReaderInLibrary computes the average number of borrows per member of each library.
func (e *Engine) AverageBorrowsPerReaderInLibrary(ctx context.Context) ([]LibraryBorrowAverage, error) {
	return observe(ctx, e, OperationAverageBorrowsPerLibrary, func(ctx context.Context) ([]LibraryBorrowAverage, error) {
		libraries, err := e.dataset.Libraries(ctx)
		if err != nil {
			return nil, err
		}

		members, err := e.dataset.LibraryMembers(ctx)
		if err != nil {
			return nil, err
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.AllBorrows())
		if err != nil {
			return nil, err
		}

		return ProjectLibraryBorrowAverages(libraries, members, borrows), nil
	})
}

// ProjectLibraryBorrowAverages is the pure projection behind AverageBorrowsPerReaderInLibrary.
//
// A borrow counts for every library its reader is a member of. Libraries without any borrow are left out,
// which covers every library without members. Rows are ordered by average descending, then library id.
func ProjectLibraryBorrowAverages(
	libraries []lending.Library,
	members []lending.LibraryMember,
	borrows []lending.BorrowRecord,
) []LibraryBorrowAverage {

	readersByLibrary := make(map[int64]map[int64]struct{})
	librariesByReader := make(map[int64][]int64)

	for _, member := range members {
		if readersByLibrary[member.LibraryID] == nil {
			readersByLibrary[member.LibraryID] = make(map[int64]struct{})
		}

		if _, seen := readersByLibrary[member.LibraryID][member.ReaderID]; seen {
			continue
		}

		readersByLibrary[member.LibraryID][member.ReaderID] = struct{}{}
		librariesByReader[member.ReaderID] = append(librariesByReader[member.ReaderID], member.LibraryID)
	}

	borrowsByLibrary := make(map[int64]map[int64]struct{})
	for _, borrow := range borrows {
		for _, libraryID := range librariesByReader[borrow.ReaderID] {
			if borrowsByLibrary[libraryID] == nil {
				borrowsByLibrary[libraryID] = make(map[int64]struct{})
			}

			borrowsByLibrary[libraryID][borrow.ID] = struct{}{}
		}
	}

	averages := make([]LibraryBorrowAverage, 0, len(libraries))
	for _, library := range libraries {
		totalReaders := len(readersByLibrary[library.ID])
		totalBorrows := len(borrowsByLibrary[library.ID])

		if totalBorrows == 0 {
			continue
		}

		averages = append(averages, LibraryBorrowAverage{
			LibraryID:    library.ID,
			LibraryName:  library.Name,
			TotalReaders: totalReaders,
			TotalBorrows: totalBorrows,
			Average:      averageOf(totalBorrows, totalReaders),
		})
	}

	slices.SortFunc(averages, func(a, b LibraryBorrowAverage) int {
		if c := cmp.Compare(b.Average, a.Average); c != 0 {
			return c
		}

		return cmp.Compare(a.LibraryID, b.LibraryID)
	})

	return averages
}

// averageOf divides total by count, a zero count yields 0.
func averageOf(total, count int) float64 {
	if count == 0 {
		return 0
	}

	return float64(total) / float64(count)
}
