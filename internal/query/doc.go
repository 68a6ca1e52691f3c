// Package query implements the client-side query engine over a loaded
// record sequence: search filtering, collated sorting and page slicing.
//
// Every function here is a pure function of its inputs. The engine never
// mutates the record slice it is given, and each Row it returns carries the
// record's index in that slice so a caller can map a displayed row back to
// its position in the authoritative sequence.
//
// Stages run in a fixed order:
//
//	Filter -> Sort -> ClampPage -> Paginate
//
// Search grammar (terms are whitespace separated, all must match):
//
//	gold          category, subscriber number, or any column contains "gold"
//	4567          subscriber number ends with 4567 (or any clause above)
//	gold:501      category contains "gold" AND subscriber number contains "501"
//
// A term containing a colon is only ever evaluated as category:number. When
// it fails, the record is excluded; the literal text is not retried against
// the other clauses.
package query
