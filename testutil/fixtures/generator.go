package fixtures

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// GeneratorConfig controls the size and shape of a generated dataset.
type GeneratorConfig struct {
	Seed          uint64
	Libraries     int
	Readers       int
	Authors       int
	Books         int
	Categories    int
	Borrows       int
	Start         time.Time
	SpanDays      int
	ReturnedShare float64
}

// DefaultGeneratorConfig returns a small dataset of roughly the size of a demo library network.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		Libraries:     5,
		Readers:       200,
		Authors:       40,
		Books:         300,
		Categories:    12,
		Borrows:       5000,
		Start:         time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		SpanDays:      3 * 365,
		ReturnedShare: 0.85,
	}
}

var (
	firstNames    = []string{"Anna", "Ben", "Clara", "David", "Ella", "Finn", "Greta", "Hugo", "Ida", "Jonas", "Klara", "Leon"}
	lastNames     = []string{"Schmidt", "Novak", "Rossi", "Dubois", "Larsen", "Kowalski", "Silva", "Horvat", "Meyer", "Jansen"}
	genders       = []string{lending.GenderMale, lending.GenderFemale, lending.GenderMale, lending.GenderFemale, "other"}
	categoryNames = []string{
		"Fantasy", "Science Fiction", "Crime", "History", "Biography", "Poetry",
		"Philosophy", "Travel", "Cooking", "Children", "Romance", "Horror",
	}
	cities          = []string{"Vienna", "Graz", "Linz", "Salzburg", "Innsbruck"}
	loanStatusNames = []string{"available", "borrowed", "reserved"}
)

// Generate creates a random but referentially valid dataset. Equal configs produce equal datasets.
//
//nolint:funlen
func Generate(cfg GeneratorConfig) lending.SnapshotData {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var data lending.SnapshotData

	for i := range loanStatusNames {
		data.LoanStatuses = append(data.LoanStatuses, lending.LoanStatus{ID: int64(i + 1), StatusName: loanStatusNames[i]})
	}

	for i := 1; i <= cfg.Libraries; i++ {
		data.Libraries = append(data.Libraries, lending.Library{
			ID:      int64(i),
			Name:    fmt.Sprintf("Library %d", i),
			Address: fmt.Sprintf("%s, Hauptplatz %d", pick(rng, cities), i),
		})
	}

	for i := 1; i <= cfg.Readers; i++ {
		first, last := pick(rng, firstNames), pick(rng, lastNames)
		data.Readers = append(data.Readers, lending.Reader{
			ID:          int64(i),
			FirstName:   first,
			LastName:    last,
			Gender:      pick(rng, genders),
			City:        pick(rng, cities),
			Street:      "Ringstrasse",
			HouseNumber: fmt.Sprintf("%d", rng.IntN(200)+1),
			PhoneNumber: fmt.Sprintf("+43 660 %07d", rng.IntN(10_000_000)),
			Email:       fmt.Sprintf("reader%d@example.org", i),
		})

		if cfg.Libraries > 0 {
			data.LibraryMembers = append(data.LibraryMembers, lending.LibraryMember{
				LibraryID: int64(rng.IntN(cfg.Libraries) + 1),
				ReaderID:  int64(i),
			})
		}
	}

	for i := 1; i <= cfg.Authors; i++ {
		author := lending.Author{
			ID:        int64(i),
			FirstName: pick(rng, firstNames),
			LastName:  pick(rng, lastNames),
			BirthYear: 1850 + rng.IntN(130),
		}

		if rng.IntN(3) == 0 {
			deathYear := author.BirthYear + 40 + rng.IntN(50)
			author.DeathYear = &deathYear
		}

		data.Authors = append(data.Authors, author)
	}

	for i := 1; i <= cfg.Categories; i++ {
		data.Categories = append(data.Categories, lending.BookCategory{
			ID:   int64(i),
			Name: categoryNames[(i-1)%len(categoryNames)],
		})
	}

	for i := 1; i <= cfg.Books; i++ {
		loanStatusID := int64(rng.IntN(len(loanStatusNames)) + 1)
		data.Books = append(data.Books, lending.Book{
			ID:              int64(i),
			Title:           fmt.Sprintf("Book %d", i),
			PublicationYear: 1900 + rng.IntN(124),
			LoanStatusID:    &loanStatusID,
		})

		if cfg.Authors > 0 {
			for _, authorID := range distinctIDs(rng, cfg.Authors, 1+rng.IntN(2)) {
				data.BookAuthors = append(data.BookAuthors, lending.BookByAuthor{AuthorID: authorID, BookID: int64(i)})
			}
		}

		if cfg.Categories > 0 {
			for _, categoryID := range distinctIDs(rng, cfg.Categories, 1+rng.IntN(3)) {
				data.BookCategories = append(data.BookCategories, lending.BookByCategory{CategoryID: categoryID, BookID: int64(i)})
			}
		}
	}

	if cfg.Readers == 0 || cfg.Books == 0 {
		return data
	}

	for i := 1; i <= cfg.Borrows; i++ {
		borrowDate := cfg.Start.AddDate(0, 0, rng.IntN(max(cfg.SpanDays, 1)))
		record := lending.BorrowRecord{
			ID:         int64(i),
			ReaderID:   int64(rng.IntN(cfg.Readers) + 1),
			BookID:     int64(rng.IntN(cfg.Books) + 1),
			BorrowDate: borrowDate,
		}

		if rng.Float64() < cfg.ReturnedShare {
			returnDate := borrowDate.AddDate(0, 0, 1+rng.IntN(60))
			record.ReturnDate = &returnDate
		}

		data.BorrowHistory = append(data.BorrowHistory, record)
	}

	return data
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

// distinctIDs draws up to n distinct ids from 1..upper.
func distinctIDs(rng *rand.Rand, upper, n int) []int64 {
	n = min(n, upper)
	ids := make([]int64, 0, n)

	for _, offset := range rng.Perm(upper)[:n] {
		ids = append(ids, int64(offset+1))
	}

	return ids
}
