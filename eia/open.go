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

package eia

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/elci/lcierr"
)

// BulkMember is the name of the interchange file within the bulk
// archive.
const BulkMember = "EBA.txt"

// A Fetcher retrieves the contents of the file at url.
type Fetcher func(ctx context.Context, url string) (io.ReadCloser, error)

// Open opens the bulk data file at path. If the file does not exist,
// a single attempt is made to retrieve it from url using fetch, and the
// result is saved to path. If url refers to a zip archive, the
// BulkMember entry is extracted. Failures are returned as
// lcierr.DataUnavailableError.
func Open(ctx context.Context, path, url string, fetch Fetcher) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, lcierr.DataUnavailableError{Path: path, Err: err}
	}
	if url == "" || fetch == nil {
		return nil, lcierr.DataUnavailableError{Path: path, Err: fmt.Errorf("file does not exist and no download location is configured")}
	}
	if err := download(ctx, path, url, fetch); err != nil {
		return nil, lcierr.DataUnavailableError{Path: path, Err: err}
	}
	f, err = os.Open(path)
	if err != nil {
		return nil, lcierr.DataUnavailableError{Path: path, Err: err}
	}
	return f, nil
}

func download(ctx context.Context, path, url string, fetch Fetcher) error {
	r, err := fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("downloading %s: %v", url, err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return fmt.Errorf("downloading %s: %v", url, err)
	}
	if strings.HasSuffix(strings.ToLower(url), ".zip") {
		if b, err = unzip(b, BulkMember); err != nil {
			return fmt.Errorf("extracting %s: %v", url, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

func unzip(b []byte, member string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if filepath.Base(f.Name) != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return ioutil.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive has no member %s", member)
}
