package analytics

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// CategoryPublicationYears summarizes the publication years of the books in one category.
type CategoryPublicationYears struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Books        int     `json:"books"`
	MinYear      int     `json:"min_publication_year"`
	MaxYear      int     `json:"max_publication_year"`
	MeanYear     float64 `json:"avg_publication_year"`
}

// PublicationYearsByCategory computes min, max, and mean publication year per category.
func (e *Engine) PublicationYearsByCategory(ctx context.Context) ([]CategoryPublicationYears, error) {
	return observe(ctx, e, OperationPublicationYearsByCategory, func(ctx context.Context) ([]CategoryPublicationYears, error) {
		categories, err := e.dataset.Categories(ctx)
		if err != nil {
			return nil, err
		}

		books, err := e.dataset.Books(ctx)
		if err != nil {
			return nil, err
		}

		bookCategories, err := e.dataset.BookCategories(ctx)
		if err != nil {
			return nil, err
		}

		return ProjectPublicationYearsByCategory(categories, books, bookCategories), nil
	})
}

// ProjectPublicationYearsByCategory is the pure projection behind PublicationYearsByCategory.
// Categories without books are omitted, books without a category are not counted anywhere.
// Rows are ordered by category name, then category id.
func ProjectPublicationYearsByCategory(
	categories []lending.BookCategory,
	books []lending.Book,
	bookCategories []lending.BookByCategory,
) []CategoryPublicationYears {

	years := make(map[int64]int, len(books))
	for _, book := range books {
		years[book.ID] = book.PublicationYear
	}

	stats := make(map[int64]*CategoryPublicationYears)
	sums := make(map[int64]int)

	for bookID, categoryIDs := range categoryIDsByBook(bookCategories) {
		year, ok := years[bookID]
		if !ok {
			continue
		}

		for _, categoryID := range categoryIDs {
			entry, seen := stats[categoryID]
			if !seen {
				entry = &CategoryPublicationYears{CategoryID: categoryID, MinYear: year, MaxYear: year}
				stats[categoryID] = entry
			}

			entry.Books++
			entry.MinYear = min(entry.MinYear, year)
			entry.MaxYear = max(entry.MaxYear, year)
			sums[categoryID] += year
		}
	}

	result := make([]CategoryPublicationYears, 0, len(stats))
	for _, category := range categories {
		entry, ok := stats[category.ID]
		if !ok {
			continue
		}

		entry.CategoryName = category.Name
		entry.MeanYear = averageOf(sums[category.ID], entry.Books)
		result = append(result, *entry)
	}

	slices.SortFunc(result, func(a, b CategoryPublicationYears) int {
		if c := strings.Compare(a.CategoryName, b.CategoryName); c != 0 {
			return c
		}

		return cmp.Compare(a.CategoryID, b.CategoryID)
	})

	return result
}
