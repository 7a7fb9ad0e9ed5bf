package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
	"github.com/AntonStoeckl/lending-analytics-go/lending/sqlengine/internal/adapters"
)

const (
	entityLibrary        = "library"
	entityReader         = "reader"
	entityAuthor         = "author"
	entityBook           = "book"
	entityCategory       = "bookcategory"
	entityBookByAuthor   = "bookbyauthor"
	entityBookByCategory = "bookbycategory"
	entityLibraryMember  = "librarymember"
	entityBorrowHistory  = "borrowhistory"

	colID              = "id"
	colName            = "name"
	colAddress         = "address"
	colFirstName       = "first_name"
	colLastName        = "last_name"
	colGender          = "gender"
	colCity            = "city"
	colStreet          = "street"
	colHouseNumber     = "house_number"
	colPhoneNumber     = "phone_number"
	colEmail           = "email"
	colBirthYear       = "birth_year"
	colDeathYear       = "death_year"
	colTitle           = "title"
	colPublicationYear = "publication_year"
	colLoanStatusID    = "loan_status_id"
	colAuthorID        = "author_id"
	colBookID          = "book_id"
	colCategoryID      = "category_id"
	colLibraryID       = "library_id"
	colReaderID        = "reader_id"
	colBorrowDate      = "borrow_date"
	colReturnDate      = "return_date"
)

func (ds Dataset) Readers(ctx context.Context) ([]lending.Reader, error) {
	selectQuery := ds.dialect.From(ds.table(entityReader)).
		Select(colID, colFirstName, colLastName, colGender, colCity, colStreet, colHouseNumber, colPhoneNumber, colEmail).
		Order(goqu.C(colID).Asc())

	return queryAll(ctx, ds, entityReader, selectQuery, func(rows adapters.DBRows) (lending.Reader, error) {
		var r lending.Reader
		err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Gender, &r.City, &r.Street, &r.HouseNumber, &r.PhoneNumber, &r.Email)

		return r, err
	})
}

func (ds Dataset) Authors(ctx context.Context) ([]lending.Author, error) {
	selectQuery := ds.dialect.From(ds.table(entityAuthor)).
		Select(colID, colFirstName, colLastName, colBirthYear, colDeathYear).
		Order(goqu.C(colID).Asc())

	return queryAll(ctx, ds, entityAuthor, selectQuery, func(rows adapters.DBRows) (lending.Author, error) {
		var a lending.Author
		var deathYear sql.NullInt64

		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.BirthYear, &deathYear); err != nil {
			return a, err
		}

		if deathYear.Valid {
			year := int(deathYear.Int64)
			a.DeathYear = &year
		}

		return a, nil
	})
}

func (ds Dataset) Books(ctx context.Context) ([]lending.Book, error) {
	selectQuery := ds.dialect.From(ds.table(entityBook)).
		Select(colID, colTitle, colPublicationYear, colLoanStatusID).
		Order(goqu.C(colID).Asc())

	return queryAll(ctx, ds, entityBook, selectQuery, func(rows adapters.DBRows) (lending.Book, error) {
		var b lending.Book
		var loanStatusID sql.NullInt64

		if err := rows.Scan(&b.ID, &b.Title, &b.PublicationYear, &loanStatusID); err != nil {
			return b, err
		}

		if loanStatusID.Valid {
			b.LoanStatusID = &loanStatusID.Int64
		}

		return b, nil
	})
}

func (ds Dataset) Categories(ctx context.Context) ([]lending.BookCategory, error) {
	selectQuery := ds.dialect.From(ds.table(entityCategory)).
		Select(colID, colName).
		Order(goqu.C(colID).Asc())

	return queryAll(ctx, ds, entityCategory, selectQuery, func(rows adapters.DBRows) (lending.BookCategory, error) {
		var c lending.BookCategory
		err := rows.Scan(&c.ID, &c.Name)

		return c, err
	})
}

func (ds Dataset) Libraries(ctx context.Context) ([]lending.Library, error) {
	selectQuery := ds.dialect.From(ds.table(entityLibrary)).
		Select(colID, colName, colAddress).
		Order(goqu.C(colID).Asc())

	return queryAll(ctx, ds, entityLibrary, selectQuery, func(rows adapters.DBRows) (lending.Library, error) {
		var l lending.Library
		err := rows.Scan(&l.ID, &l.Name, &l.Address)

		return l, err
	})
}

func (ds Dataset) LibraryMembers(ctx context.Context) ([]lending.LibraryMember, error) {
	selectQuery := ds.dialect.From(ds.table(entityLibraryMember)).
		Select(colLibraryID, colReaderID).
		Order(goqu.C(colLibraryID).Asc(), goqu.C(colReaderID).Asc())

	return queryAll(ctx, ds, entityLibraryMember, selectQuery, func(rows adapters.DBRows) (lending.LibraryMember, error) {
		var m lending.LibraryMember
		err := rows.Scan(&m.LibraryID, &m.ReaderID)

		return m, err
	})
}

func (ds Dataset) BookAuthors(ctx context.Context) ([]lending.BookByAuthor, error) {
	selectQuery := ds.dialect.From(ds.table(entityBookByAuthor)).
		Select(colAuthorID, colBookID).
		Order(goqu.C(colAuthorID).Asc(), goqu.C(colBookID).Asc())

	return queryAll(ctx, ds, entityBookByAuthor, selectQuery, func(rows adapters.DBRows) (lending.BookByAuthor, error) {
		var link lending.BookByAuthor
		err := rows.Scan(&link.AuthorID, &link.BookID)

		return link, err
	})
}

func (ds Dataset) BookCategories(ctx context.Context) ([]lending.BookByCategory, error) {
	selectQuery := ds.dialect.From(ds.table(entityBookByCategory)).
		Select(colCategoryID, colBookID).
		Order(goqu.C(colCategoryID).Asc(), goqu.C(colBookID).Asc())

	return queryAll(ctx, ds, entityBookByCategory, selectQuery, func(rows adapters.DBRows) (lending.BookByCategory, error) {
		var link lending.BookByCategory
		err := rows.Scan(&link.CategoryID, &link.BookID)

		return link, err
	})
}

// BorrowHistory retrieves the borrow records matching the lending.BorrowFilter, ordered by id.
func (ds Dataset) BorrowHistory(ctx context.Context, filter lending.BorrowFilter) ([]lending.BorrowRecord, error) {
	selectQuery := ds.buildBorrowHistoryQuery(filter)

	return queryAll(ctx, ds, entityBorrowHistory, selectQuery, func(rows adapters.DBRows) (lending.BorrowRecord, error) {
		var br lending.BorrowRecord
		var returnDate sql.NullTime

		if err := rows.Scan(&br.ID, &br.ReaderID, &br.BookID, &br.BorrowDate, &returnDate); err != nil {
			return br, err
		}

		br.BorrowDate = br.BorrowDate.UTC()

		if returnDate.Valid {
			returned := returnDate.Time.UTC()
			br.ReturnDate = &returned
		}

		return br, nil
	})
}

func (ds Dataset) buildBorrowHistoryQuery(filter lending.BorrowFilter) *goqu.SelectDataset {
	selectQuery := ds.dialect.From(ds.table(entityBorrowHistory)).
		Select(colID, colReaderID, colBookID, colBorrowDate, colReturnDate).
		Order(goqu.C(colID).Asc())

	var conditions []exp.Expression

	if readerIDs := filter.ReaderIDs(); len(readerIDs) > 0 {
		conditions = append(conditions, goqu.C(colReaderID).In(readerIDs))
	}

	if bookIDs := filter.BookIDs(); len(bookIDs) > 0 {
		conditions = append(conditions, goqu.C(colBookID).In(bookIDs))
	}

	// authors and categories stay inside the database, their book lists can exceed the bind parameter limit
	if authorIDs := filter.AuthorIDs(); len(authorIDs) > 0 {
		booksOfAuthors := ds.dialect.From(ds.table(entityBookByAuthor)).
			Select(colBookID).
			Where(goqu.C(colAuthorID).In(authorIDs))

		conditions = append(conditions, goqu.C(colBookID).In(booksOfAuthors))
	}

	if categoryIDs := filter.CategoryIDs(); len(categoryIDs) > 0 {
		booksInCategories := ds.dialect.From(ds.table(entityBookByCategory)).
			Select(colBookID).
			Where(goqu.C(colCategoryID).In(categoryIDs))

		conditions = append(conditions, goqu.C(colBookID).In(booksInCategories))
	}

	if from := filter.BorrowedFrom(); from != nil {
		conditions = append(conditions, goqu.C(colBorrowDate).Gte(from.UTC()))
	}

	if until := filter.BorrowedUntil(); until != nil {
		conditions = append(conditions, goqu.C(colBorrowDate).Lt(until.UTC()))
	}

	if filter.OnlyReturned() {
		conditions = append(conditions, goqu.C(colReturnDate).IsNotNull())
	}

	if len(conditions) > 0 {
		selectQuery = selectQuery.Where(conditions...)
	}

	return selectQuery
}

// queryAll runs a prepared select and scans every row with scanRow, wrapped in the Dataset's observability.
func queryAll[T any](
	ctx context.Context,
	ds Dataset,
	entity string,
	selectQuery *goqu.SelectDataset,
	scanRow func(rows adapters.DBRows) (T, error),
) ([]T, error) {

	sqlQuery, args, buildQueryErr := selectQuery.Prepared(true).ToSQL()
	if buildQueryErr != nil {
		ds.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, logAttrEntity, entity)
		return nil, errors.Join(lending.ErrBuildingQueryFailed, buildQueryErr)
	}

	ctx, span := ds.startQuerySpan(ctx, entity)
	queryStart := time.Now()

	items, err := scanAll(ctx, ds, entity, sqlQuery, args, scanRow)

	duration := time.Since(queryStart)
	ds.recordQuery(ctx, span, entity, sqlQuery, len(items), duration, err)

	if err != nil {
		return nil, err
	}

	return items, nil
}

func scanAll[T any](
	ctx context.Context,
	ds Dataset,
	entity string,
	sqlQuery string,
	args []any,
	scanRow func(rows adapters.DBRows) (T, error),
) ([]T, error) {

	rows, queryErr := ds.db.Query(ctx, sqlQuery, args...)
	if queryErr != nil {
		ds.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrEntity, entity, logAttrQuery, sqlQuery)
		return nil, errors.Join(lending.ErrQueryingDatasetFailed, queryErr)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			ds.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error(), logAttrEntity, entity)
		}
	}()

	items := make([]T, 0)

	for rows.Next() {
		item, scanErr := scanRow(rows)
		if scanErr != nil {
			ds.logError(ctx, logMsgScanRowFailed, scanErr, logAttrEntity, entity)
			return nil, errors.Join(lending.ErrScanningRowFailed, scanErr)
		}

		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		ds.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrEntity, entity, logAttrQuery, sqlQuery)
		return nil, errors.Join(lending.ErrQueryingDatasetFailed, rowsErr)
	}

	return items, nil
}
