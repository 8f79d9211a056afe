// Package sheet turns spreadsheet rows into [family.Data].
//
// # Row Format
//
// Each data row carries up to 13 positional cells:
//
//	gen, first name, last name, father, mother, birth date, birthplace,
//	death date, image, marriage, gender, note, id
//
// The gen cell is either an integer generation (a blood-line member) or the
// spouse marker "E", which attaches the row as partner of the most recent
// regular member above it.
//
// # Unions
//
// Parents are joined through synthetic union nodes with ids of the form
// u_<a>_<b> (sorted member ids, "unknown" for a missing partner). Children
// hang off the union, so every link joins a member and a union.
//
// # Parent Resolution
//
// For a child at generation g the blood parent is the last regular member
// at g-1. The co-parent is chosen by matching the father name, then the
// mother name, against the first names of that parent's spouses, falling
// back to the last spouse seen at g-1. The fallback can attribute a child to
// the wrong spouse when names do not match; it is kept for compatibility
// with existing sheets.
//
// # Loading
//
// [ReadCSV] reads an exported sheet and drops the header row. [Loader]
// fetches a CSV from a URL (cached, with retries) or a local path and runs
// [Build] on it.
package sheet
