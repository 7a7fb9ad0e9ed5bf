package lending

import (
	"strings"
	"time"
)

// Gender values as stored on Reader.Gender. Matching is exact and case-sensitive.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

type Library struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Reader struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Gender      string `json:"gender"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// FullName returns "first last", omitting empty parts.
func (r Reader) FullName() string {
	return joinName(r.FirstName, r.LastName)
}

type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthYear int    `json:"birth_year"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// FullName returns "first last", omitting empty parts.
func (a Author) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	LoanStatusID    *int64 `json:"loan_status_id,omitempty"`
}

type BookCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LoanStatus struct {
	ID         int64  `json:"id"`
	StatusName string `json:"status_name"`
}

// BookByAuthor links a Book to one of its authors.
type BookByAuthor struct {
	AuthorID int64 `json:"author_id"`
	BookID   int64 `json:"book_id"`
}

// BookByCategory links a Book to one of its categories.
type BookByCategory struct {
	CategoryID int64 `json:"category_id"`
	BookID     int64 `json:"book_id"`
}

// LibraryMember links a Reader to a Library.
type LibraryMember struct {
	LibraryID int64 `json:"library_id"`
	ReaderID  int64 `json:"reader_id"`
}

// BorrowRecord is one instance of a reader taking out a book.
// BorrowDate is always set, ReturnDate is nil while the loan is open.
type BorrowRecord struct {
	ID         int64      `json:"id"`
	ReaderID   int64      `json:"reader_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// IsReturned reports whether the loan has been closed.
func (br BorrowRecord) IsReturned() bool {
	return br.ReturnDate != nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
