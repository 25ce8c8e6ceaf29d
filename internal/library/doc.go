// Package library moves a user's whole reading library in and out of the store.
//
// # Snapshot documents
//
// A Snapshot holds every book, category, book-category pair, challenge,
// reading session and highlight of one user. Exporter builds it with plain
// reads; Reconciler replaces the user's data with the content of one.
//
//	exporter := library.NewExporter(db.DB, log)
//	snap, err := exporter.Export(ctx, userID)
//
//	reconciler := library.NewReconciler(db.DB, log)
//	result, err := reconciler.Import(ctx, userID, snap)
//
// # Identifier translation
//
// Ids inside a snapshot live in the snapshot's own id space. During import
// every inserted book and category is recorded in a translation table
// (snapshot id to stored id), and book-category pairs, sessions and
// highlights are rewritten through those tables. References that cannot be
// translated are dropped and counted in ImportResult.Dropped.
//
// Whether a kind tries to keep the snapshot id is an IDPolicy. Books default
// to PreserveOrReassign so an export/import round trip keeps book ids when
// they are free; all other kinds default to AlwaysReassign.
//
// # Ordering
//
// Deletion and insertion order are derived from a static dependency graph
// between kinds: dependents are deleted before the rows they reference and
// inserted after them. The whole replacement runs in one transaction.
package library
