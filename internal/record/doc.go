// Package record defines the spreadsheet row model shared by every other
// package in numberdesk.
//
// A Record mirrors one row of the backing sheet. The record shape is closed:
// the seven columns are enumerated by Fields, and generic access goes through
// Record.Value rather than reflection.
//
// Key constraints:
//   - CallCenterStatus is always Open or Reserved; decoding rejects anything else
//   - Cells decode from JSON strings or numbers into their plain string form
//   - A record's identity is its position in the loaded sequence
package record
