package analytics

import (
	"slices"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

func categoryNames(categories []lending.BookCategory) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	return names
}

func readerNames(readers []lending.Reader) map[int64]string {
	names := make(map[int64]string, len(readers))
	for _, reader := range readers {
		names[reader.ID] = reader.FullName()
	}

	return names
}

// categoryIDsByBook maps each book to its sorted, duplicate-free category ids.
func categoryIDsByBook(links []lending.BookByCategory) map[int64][]int64 {
	byBook := make(map[int64][]int64)
	for _, link := range links {
		byBook[link.BookID] = append(byBook[link.BookID], link.CategoryID)
	}

	for bookID, ids := range byBook {
		slices.Sort(ids)
		byBook[bookID] = slices.Compact(ids)
	}

	return byBook
}

func booksOfAuthor(links []lending.BookByAuthor, authorID int64) map[int64]struct{} {
	books := make(map[int64]struct{})
	for _, link := range links {
		if link.AuthorID == authorID {
			books[link.BookID] = struct{}{}
		}
	}

	return books
}

func booksInCategory(links []lending.BookByCategory, categoryID int64) map[int64]struct{} {
	books := make(map[int64]struct{})
	for _, link := range links {
		if link.CategoryID == categoryID {
			books[link.BookID] = struct{}{}
		}
	}

	return books
}

func validateFilterID(id int64) error {
	if id <= 0 {
		return lending.ErrInvalidFilterID
	}

	return nil
}
