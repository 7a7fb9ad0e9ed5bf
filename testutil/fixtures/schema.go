package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // driver registration

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

const insertChunkSize = 500

// schemaStatements mirror the tables of the Django lending app, {p} is replaced by the table prefix.
// The column types are valid in both postgres and sqlite.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS {p}library (
		id BIGINT PRIMARY KEY, name VARCHAR(255) NOT NULL, address VARCHAR(255) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS {p}reader (
		id BIGINT PRIMARY KEY, first_name VARCHAR(100) NOT NULL, last_name VARCHAR(100) NOT NULL,
		gender VARCHAR(20) NOT NULL, city VARCHAR(100) NOT NULL, street VARCHAR(100) NOT NULL,
		house_number VARCHAR(20) NOT NULL, phone_number VARCHAR(30) NOT NULL, email VARCHAR(254) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS {p}author (
		id BIGINT PRIMARY KEY, first_name VARCHAR(100) NOT NULL, last_name VARCHAR(100) NOT NULL,
		birth_year INTEGER NOT NULL, death_year INTEGER NULL)`,
	`CREATE TABLE IF NOT EXISTS {p}loanstatus (
		id BIGINT PRIMARY KEY, status_name VARCHAR(50) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS {p}book (
		id BIGINT PRIMARY KEY, title VARCHAR(255) NOT NULL, publication_year INTEGER NOT NULL,
		loan_status_id BIGINT NULL REFERENCES {p}loanstatus (id))`,
	`CREATE TABLE IF NOT EXISTS {p}bookcategory (
		id BIGINT PRIMARY KEY, name VARCHAR(100) NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS {p}bookbyauthor (
		author_id BIGINT NOT NULL REFERENCES {p}author (id), book_id BIGINT NOT NULL REFERENCES {p}book (id))`,
	`CREATE TABLE IF NOT EXISTS {p}bookbycategory (
		category_id BIGINT NOT NULL REFERENCES {p}bookcategory (id), book_id BIGINT NOT NULL REFERENCES {p}book (id))`,
	`CREATE TABLE IF NOT EXISTS {p}librarymember (
		library_id BIGINT NOT NULL REFERENCES {p}library (id), reader_id BIGINT NOT NULL REFERENCES {p}reader (id))`,
	`CREATE TABLE IF NOT EXISTS {p}borrowhistory (
		id BIGINT PRIMARY KEY, reader_id BIGINT NOT NULL REFERENCES {p}reader (id),
		book_id BIGINT NOT NULL REFERENCES {p}book (id), borrow_date DATE NOT NULL, return_date DATE NULL)`,
}

// CreateSchema creates the lending tables if they do not exist yet.
func CreateSchema(ctx context.Context, db *sql.DB, tablePrefix string) error {
	for _, statement := range schemaStatements {
		if _, err := db.ExecContext(ctx, strings.ReplaceAll(statement, "{p}", tablePrefix)); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}

// Load inserts the dataset into the lending tables, rendering the inserts in the given goqu dialect.
//
//nolint:funlen
func Load(ctx context.Context, db *sql.DB, dialect, tablePrefix string, data lending.SnapshotData) error {
	loader := tableLoader{db: db, dialect: goqu.Dialect(dialect), prefix: tablePrefix}

	steps := []struct {
		table   string
		records []goqu.Record
	}{
		{"library", recordsOf(data.Libraries, func(l lending.Library) goqu.Record {
			return goqu.Record{"id": l.ID, "name": l.Name, "address": l.Address}
		})},
		{"reader", recordsOf(data.Readers, func(r lending.Reader) goqu.Record {
			return goqu.Record{
				"id": r.ID, "first_name": r.FirstName, "last_name": r.LastName, "gender": r.Gender, "city": r.City,
				"street": r.Street, "house_number": r.HouseNumber, "phone_number": r.PhoneNumber, "email": r.Email,
			}
		})},
		{"author", recordsOf(data.Authors, func(a lending.Author) goqu.Record {
			return goqu.Record{
				"id": a.ID, "first_name": a.FirstName, "last_name": a.LastName, "birth_year": a.BirthYear,
				"death_year": nullableInt(a.DeathYear),
			}
		})},
		{"loanstatus", recordsOf(data.LoanStatuses, func(ls lending.LoanStatus) goqu.Record {
			return goqu.Record{"id": ls.ID, "status_name": ls.StatusName}
		})},
		{"book", recordsOf(data.Books, func(b lending.Book) goqu.Record {
			return goqu.Record{
				"id": b.ID, "title": b.Title, "publication_year": b.PublicationYear,
				"loan_status_id": nullableInt64(b.LoanStatusID),
			}
		})},
		{"bookcategory", recordsOf(data.Categories, func(c lending.BookCategory) goqu.Record {
			return goqu.Record{"id": c.ID, "name": c.Name}
		})},
		{"bookbyauthor", recordsOf(data.BookAuthors, func(link lending.BookByAuthor) goqu.Record {
			return goqu.Record{"author_id": link.AuthorID, "book_id": link.BookID}
		})},
		{"bookbycategory", recordsOf(data.BookCategories, func(link lending.BookByCategory) goqu.Record {
			return goqu.Record{"category_id": link.CategoryID, "book_id": link.BookID}
		})},
		{"librarymember", recordsOf(data.LibraryMembers, func(m lending.LibraryMember) goqu.Record {
			return goqu.Record{"library_id": m.LibraryID, "reader_id": m.ReaderID}
		})},
		{"borrowhistory", recordsOf(data.BorrowHistory, func(br lending.BorrowRecord) goqu.Record {
			return goqu.Record{
				"id": br.ID, "reader_id": br.ReaderID, "book_id": br.BookID,
				"borrow_date": br.BorrowDate.UTC(), "return_date": nullableTime(br.ReturnDate),
			}
		})},
	}

	for _, step := range steps {
		if err := loader.insert(ctx, step.table, step.records); err != nil {
			return err
		}
	}

	return nil
}

// NewSQLiteDB opens a private in-memory sqlite database carrying the lending schema.
// A single connection keeps the in-memory database alive for the whole test.
func NewSQLiteDB(t testing.TB, tablePrefix string) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_time_format=sqlite", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "opening sqlite should not fail")

	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db, tablePrefix), "creating the schema should not fail")

	return db
}

type tableLoader struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
	prefix  string
}

func (l tableLoader) insert(ctx context.Context, table string, records []goqu.Record) error {
	for start := 0; start < len(records); start += insertChunkSize {
		chunk := records[start:min(start+insertChunkSize, len(records))]

		rows := make([]any, 0, len(chunk))
		for _, record := range chunk {
			rows = append(rows, record)
		}

		query, args, err := l.dialect.Insert(l.prefix + table).Rows(rows...).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("building insert for %s: %w", table, err)
		}

		if _, err = l.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}

	return nil
}

func recordsOf[T any](items []T, toRecord func(T) goqu.Record) []goqu.Record {
	records := make([]goqu.Record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}

	return records
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}

	return *value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}

	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}

	return value.UTC()
}
