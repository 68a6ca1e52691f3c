// Package store is the local SQLite cache for numberdesk.
//
// It keeps two things:
//   - the most recently applied record snapshot, so a restarted desk can
//     show last-known rows before its first successful fetch
//   - a journal of status change attempts and their outcomes
//
// The remote sheet remains the source of truth. Nothing here is ever sent
// back to it, and a missing or empty cache is not an error for callers.
//
// Ordering: changes are read back newest first by created_at, then by
// logical seq and id, so the journal is deterministic for equal timestamps.
package store
