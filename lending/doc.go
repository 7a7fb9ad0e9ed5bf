// Package lending provides the read-only data model of a library lending dataset
// and the abstractions used to query it.
//
// The package defines the entity types (readers, books, authors, categories,
// libraries, memberships and borrow records), the Dataset interface implemented by
// storage engines, the BorrowFilter used to narrow borrow history queries, and the
// dependency-free observability interfaces shared by all packages of this module.
//
// Key types:
//   - Dataset: read-only access to the entity graph, safe for concurrent use
//   - BorrowFilter: criteria for querying borrow records
//   - Snapshot: an immutable in-memory Dataset, loadable from JSON
//
// Common usage pattern:
//
//	filter := lending.BuildBorrowFilter().
//		ForBooks(bookIDs...).
//		BorrowedFrom(from).
//		Finalize()
//
//	borrows, err := dataset.BorrowHistory(ctx, filter)
//	if err != nil {
//		// handle error
//	}
package lending
