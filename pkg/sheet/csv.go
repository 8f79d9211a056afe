package sheet

import (
	"encoding/csv"
	"io"

	"github.com/matzehuels/familytree/pkg/errors"
)

// ReadCSV reads all records from r and drops the header row. Rows may have
// differing lengths.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv")
	}
	if len(rows) <= 1 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "no data rows")
	}
	return rows[1:], nil
}
