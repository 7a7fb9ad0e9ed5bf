package analytics

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// MonthlyCategoryTrend is the number of distinct borrows of books in one category during one month.
type MonthlyCategoryTrend struct {
	Month        time.Time `json:"month"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	BorrowCount  int       `json:"borrow_count"`
}

// MonthlyBorrowTrendsByCategory counts borrows per category and calendar month of the borrow date.
func (e *Engine) MonthlyBorrowTrendsByCategory(ctx context.Context) ([]MonthlyCategoryTrend, error) {
	return observe(ctx, e, OperationMonthlyBorrowTrends, func(ctx context.Context) ([]MonthlyCategoryTrend, error) {
		categories, err := e.dataset.Categories(ctx)
		if err != nil {
			return nil, err
		}

		bookCategories, err := e.dataset.BookCategories(ctx)
		if err != nil {
			return nil, err
		}

		borrows, err := e.dataset.BorrowHistory(ctx, lending.AllBorrows())
		if err != nil {
			return nil, err
		}

		return ProjectMonthlyBorrowTrends(categories, bookCategories, borrows), nil
	})
}

// ProjectMonthlyBorrowTrends is the pure projection behind MonthlyBorrowTrendsByCategory.
//
// A borrow of a book in several categories counts once for each of them. Pairs of month and category
// without any borrow produce no row. Rows are ordered by month, then category name, then category id.
func ProjectMonthlyBorrowTrends(
	categories []lending.BookCategory,
	bookCategories []lending.BookByCategory,
	borrows []lending.BorrowRecord,
) []MonthlyCategoryTrend {

	type trendKey struct {
		month      time.Time
		categoryID int64
	}

	names := categoryNames(categories)
	categoriesByBook := categoryIDsByBook(bookCategories)
	borrowIDs := make(map[trendKey]map[int64]struct{})

	for _, borrow := range borrows {
		month := firstOfMonth(borrow.BorrowDate)

		for _, categoryID := range categoriesByBook[borrow.BookID] {
			key := trendKey{month: month, categoryID: categoryID}
			if borrowIDs[key] == nil {
				borrowIDs[key] = make(map[int64]struct{})
			}

			borrowIDs[key][borrow.ID] = struct{}{}
		}
	}

	trends := make([]MonthlyCategoryTrend, 0, len(borrowIDs))
	for key, ids := range borrowIDs {
		trends = append(trends, MonthlyCategoryTrend{
			Month:        key.month,
			CategoryID:   key.categoryID,
			CategoryName: names[key.categoryID],
			BorrowCount:  len(ids),
		})
	}

	slices.SortFunc(trends, func(a, b MonthlyCategoryTrend) int {
		if c := a.Month.Compare(b.Month); c != 0 {
			return c
		}

		if c := strings.Compare(a.CategoryName, b.CategoryName); c != 0 {
			return c
		}

		return cmp.Compare(a.CategoryID, b.CategoryID)
	})

	return trends
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
