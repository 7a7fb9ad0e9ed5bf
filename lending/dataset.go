package lending

import (
	"context"
)

// Dataset gives read-only access to the lending entity graph.
// Implementations must tolerate concurrent calls from multiple goroutines.
type Dataset interface {
	Readers(ctx context.Context) ([]Reader, error)
	Authors(ctx context.Context) ([]Author, error)
	Books(ctx context.Context) ([]Book, error)
	Categories(ctx context.Context) ([]BookCategory, error)
	Libraries(ctx context.Context) ([]Library, error)
	LibraryMembers(ctx context.Context) ([]LibraryMember, error)
	BookAuthors(ctx context.Context) ([]BookByAuthor, error)
	BookCategories(ctx context.Context) ([]BookByCategory, error)
	BorrowHistory(ctx context.Context, filter BorrowFilter) ([]BorrowRecord, error)
}
