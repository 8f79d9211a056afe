package editor

import (
	"strconv"

	"github.com/matzehuels/familytree/pkg/errors"
)

// Column is a 1-based sheet column index.
type Column int

const (
	ColGen Column = iota + 1
	ColFirstName
	ColLastName
	ColFather
	ColMother
	ColBirthDate
	ColBirthPlace
	ColDeathDate
	ColImagePath
	ColMarriage
	ColGender
	ColNote
	ColID
)

// columnKeys maps columns to the member keys used by [family.Member.Set].
var columnKeys = map[Column]string{
	ColGen:        "gen_col",
	ColFirstName:  "first_name",
	ColLastName:   "last_name",
	ColFather:     "father",
	ColMother:     "mother",
	ColBirthDate:  "birth_date",
	ColBirthPlace: "birthplace",
	ColDeathDate:  "death_date",
	ColImagePath:  "image_path",
	ColMarriage:   "marriage",
	ColGender:     "gender",
	ColNote:       "note",
	ColID:         "id",
}

// Key returns the member key stored in column c, or "" if c is unknown.
func (c Column) Key() string { return columnKeys[c] }

// String implements fmt.Stringer.
func (c Column) String() string {
	if k := c.Key(); k != "" {
		return k
	}
	return strconv.Itoa(int(c))
}

// Validate reports an INVALID_INPUT error for columns outside the sheet.
func (c Column) Validate() error {
	return errors.ValidateColumn(int(c), int(ColID))
}

// ColumnByKey returns the column that stores key.
func ColumnByKey(key string) (Column, bool) {
	for c, k := range columnKeys {
		if k == key {
			return c, true
		}
	}
	if key == "birth_place" {
		return ColBirthPlace, true
	}
	return 0, false
}

// Updates maps columns to new cell values. It encodes as a JSON object
// keyed by the decimal column index.
type Updates map[Column]string

// FieldsToUpdates converts key/value fields (as typed into an edit form)
// to column updates. Empty values are dropped; unknown keys are an error.
func FieldsToUpdates(fields map[string]string) (Updates, error) {
	u := make(Updates, len(fields))
	for key, val := range fields {
		if val == "" {
			continue
		}
		col, ok := ColumnByKey(key)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown field %q", key)
		}
		u[col] = val
	}
	return u, nil
}
