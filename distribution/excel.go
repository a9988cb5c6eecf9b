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

package distribution

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/tealeg/xlsx"
)

// Row labels of the state electricity profile supply and disposition
// table. Rows are matched by prefix, ignoring case.
const (
	LossesLabel      = "Estimated losses"
	DispositionLabel = "Total disposition"
	DirectUseLabel   = "Direct use"
)

// A Fetcher retrieves the contents of the file at url.
type Fetcher func(ctx context.Context, url string) (io.ReadCloser, error)

// Workbooks loads per-state electricity profile workbooks.
type Workbooks struct {
	// Dir is the directory holding the workbooks, which are named
	// after the two-letter state code, e.g. "CA.xlsx".
	Dir string

	// URL is where workbooks missing from Dir are downloaded from.
	// Any "{state}" in it is replaced with the state code.
	URL string

	// Sheet is the name of the supply and disposition sheet. If it is
	// empty, the first sheet is used.
	Sheet string

	Fetch Fetcher

	cacheOnce sync.Once
	cache     *requestcache.Cache

	mu       sync.Mutex
	attempts map[string]error
}

// Path returns the location of the workbook for the given state.
func (w *Workbooks) Path(state string) string {
	return filepath.Join(w.Dir, strings.ToUpper(state)+".xlsx")
}

// load loads the workbook for the given state, utilizing a cache to
// avoid loading the same file more than once. A missing workbook is
// downloaded at most once.
func (w *Workbooks) load(ctx context.Context, state string) (*xlsx.File, error) {
	st := strings.ToUpper(state)
	if err := w.ensure(ctx, st); err != nil {
		return nil, err
	}
	w.cacheOnce.Do(func() {
		w.cache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			f, err := xlsx.OpenFile(w.Path(req.(string)))
			if err != nil {
				return nil, fmt.Errorf("distribution: opening xlsx file: %v", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := w.cache.NewRequest(ctx, st, st)
	fI, err := r.Result()
	if err != nil {
		return nil, err
	}
	return fI.(*xlsx.File), nil
}

// ensure downloads the workbook for the given state if it does not
// exist locally. The result of the first attempt is remembered.
func (w *Workbooks) ensure(ctx context.Context, state string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err, ok := w.attempts[state]; ok {
		return err
	}
	path := w.Path(state)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	var err error
	if derr := w.download(ctx, state, path); derr != nil {
		err = lcierr.DataUnavailableError{Path: path, Err: derr}
	}
	if w.attempts == nil {
		w.attempts = make(map[string]error)
	}
	w.attempts[state] = err
	return err
}

func (w *Workbooks) download(ctx context.Context, state, path string) error {
	if w.URL == "" || w.Fetch == nil {
		return fmt.Errorf("file does not exist and no download location is configured")
	}
	url := strings.Replace(w.URL, "{state}", state, -1)
	r, err := w.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("downloading %s: %v", url, err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return fmt.Errorf("downloading %s: %v", url, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

func (w *Workbooks) sheet(ctx context.Context, state string) (*xlsx.Sheet, error) {
	f, err := w.load(ctx, state)
	if err != nil {
		return nil, err
	}
	if w.Sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("distribution: %s workbook has no sheets", state)
		}
		return f.Sheets[0], nil
	}
	s, ok := f.Sheet[w.Sheet]
	if !ok {
		return nil, fmt.Errorf("distribution: %s workbook has no sheet %s", state, w.Sheet)
	}
	return s, nil
}

// yearColumns finds the header row of s, the first row with at least
// one year in it, and returns the column of each year.
func yearColumns(s *xlsx.Sheet) (map[int]int, error) {
	for j := 0; j < s.MaxRow; j++ {
		cols := make(map[int]int)
		for i := 1; i < s.MaxCol; i++ {
			y, err := strconv.Atoi(strings.TrimSpace(s.Cell(j, i).Value))
			if err == nil && y > 1900 && y < 2200 {
				cols[y] = i
			}
		}
		if len(cols) > 0 {
			return cols, nil
		}
	}
	return nil, fmt.Errorf("no year header row")
}

// column returns the column for the given year or, if it is missing,
// the latest earlier year.
func column(cols map[int]int, year int) (int, int, error) {
	best := -1
	for y := range cols {
		if y <= year && y > best {
			best = y
		}
	}
	if best < 0 {
		return 0, 0, fmt.Errorf("no data for %d or earlier", year)
	}
	return cols[best], best, nil
}

// rowValue returns the value in the given column of the first row
// whose label starts with label.
func rowValue(s *xlsx.Sheet, label string, col int) (float64, error) {
	for j := 0; j < s.MaxRow; j++ {
		l := strings.TrimSpace(s.Cell(j, 0).Value)
		if !strings.HasPrefix(strings.ToLower(l), strings.ToLower(label)) {
			continue
		}
		cell := strings.Replace(strings.TrimSpace(s.Cell(j, col).Value), ",", "", -1)
		if cell == "" || cell == "-" || cell == "NM" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, fmt.Errorf("row %s: %v", label, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no row %s", label)
}
