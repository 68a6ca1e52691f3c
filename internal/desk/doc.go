// Package desk is the host that owns the authoritative record sequence.
//
// A Desk loads the full sequence from a sheet.Store, answers queries
// against it through the query engine, runs the status update flow, and
// refreshes periodically.
//
// Thread-safety model:
//   - every exported method is safe from any goroutine
//   - the record sequence is replaced wholesale under a write lock, so a
//     reader never observes a partially applied fetch
//
// Ordering: each fetch takes a ticket from a monotonic Clock when it
// starts. A fetch result is applied only if its ticket is newer than the
// last write, so a slow fetch that started earlier never overwrites a more
// recent result. A successful status update is itself a write and takes a
// ticket too.
//
// Failures are never fatal. A failed fetch leaves the previous sequence in
// place and posts a notice; a failed update posts a notice and forces a
// full reload.
package desk
