/*
Copyright © 2024 the ELCI authors.
This file is part of ELCI.

ELCI is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ELCI is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ELCI.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package csvtable reads comma-separated tables with a header row and
// gives access to their fields by column name.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spatialmodel/elci/lcierr"
)

// Table is a comma-separated table with named columns.
type Table struct {
	// Source is used to identify the table in error messages.
	Source string

	// Header holds the column names in file order.
	Header []string

	columns map[string]int
	rows    [][]string
}

// Read reads a table from r. An error is returned if any of the
// required columns is missing from the header row.
func Read(r io.Reader, source string, required ...string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %v", source, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: missing header row", source)
	}
	t := &Table{
		Source:  source,
		columns: make(map[string]int),
		rows:    lines[1:],
	}
	for i, h := range lines[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		t.Header = append(t.Header, h)
		t.columns[h] = i
	}
	for _, c := range required {
		if !t.Has(c) {
			return nil, fmt.Errorf("%s: missing column `%s`", source, c)
		}
	}
	return t, nil
}

// Has returns whether the table has the given column.
func (t *Table) Has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// HasAll returns whether the table has all of the given columns.
func (t *Table) HasAll(columns ...string) bool {
	for _, c := range columns {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns data row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Row is a data row of a table.
type Row struct {
	t *Table
	i int
}

// Line returns the line number of the row, counting the header as line 1.
func (r Row) Line() int { return r.i + 2 }

// String returns the trimmed value in the given column, or "" if the
// row is too short or the table lacks the column.
func (r Row) String(column string) string {
	j, ok := r.t.columns[column]
	if !ok {
		return ""
	}
	row := r.t.rows[r.i]
	if j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}

// Float parses the value in the given column.
func (r Row) Float(column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(r.String(column), ",", "", -1), 64)
	if err != nil {
		return 0, r.Error(fmt.Errorf("column %s: %v", column, err))
	}
	return v, nil
}

// Int parses the value in the given column.
func (r Row) Int(column string) (int, error) {
	s := r.String(column)
	v, err := strconv.Atoi(s)
	if err != nil {
		// Years are sometimes written as "2016.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, r.Error(fmt.Errorf("column %s: %v", column, err))
		}
		v = int(f)
	}
	return v, nil
}

// Error returns a ParseError describing the row.
func (r Row) Error(err error) lcierr.ParseError {
	return lcierr.ParseError{
		Source: r.t.Source,
		Line:   r.Line(),
		Record: strings.Join(r.t.rows[r.i], ","),
		Err:    err,
	}
}
