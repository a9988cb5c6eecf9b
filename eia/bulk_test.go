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
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

const testFeed = `{"series_id":"EBA.CISO-ALL.NG.H","name":"Net generation","data":[["20190101T00Z",100],["20190101T01Z",110],["20181231T23Z",999]]}
{"series_id":"EBA.CISO-ALL.TI.H","data":[["20190101T00Z",-10],["20190101T01Z",-12]]}
{"series_id":"EBA.BPAT-CISO.ID.H","data":[["20190101T00Z",5],["20190101T01Z",7]]}
{"series_id":"EBA.CISO-BPAT.ID.H","data":[["20190101T00-0800",-6],["20190101T01Z",null]]}
{"series_id":"EBA.CAL-NW.ID.H","data":[["20190101T00Z",50]]}
{"series_id":"EBA.US48-ALL.NG.H","data":[["20190101T00Z",5000]]}
{"series_id":"EBA.CISO-ALL.NG.HL","data":[["20190101T00-08",1]]}
{"series_id":"EBA.CISO-ALL.D.H","data":[["20190101T00Z",1]]}
{"series_id":"EBA.CISO-ALL.NG.H","data":[[
{"series_id":"EBA.BPAT-ALL.NG.H","data":[["2019-01-01",1],["20190101T05Z",20],["20190101T05Z",25]]}
`

func TestParseSeriesID(t *testing.T) {
	tests := []struct {
		id   string
		f    Family
		a, b string
		ok   bool
	}{
		{id: "EBA.CISO-ALL.NG.H", f: NetGeneration, a: "CISO", b: "ALL", ok: true},
		{id: "EBA.CISO-ALL.TI.H", f: TotalInterchange, a: "CISO", b: "ALL", ok: true},
		{id: "EBA.BPAT-CISO.ID.H", f: Exchange, a: "BPAT", b: "CISO", ok: true},
		{id: "EBA.CISO-ALL.NG.HL"},
		{id: "EBA.CISO-ALL.D.H"},
		{id: "EBA.CISO-ALL.ID.H"},
		{id: "EBA.CISO-BPAT.NG.H"},
		{id: "EBA.CISO-ALL.NG.COL.H"},
		{id: "ELEC.PLANT.GEN.H"},
	}
	for _, test := range tests {
		t.Run(test.id, func(t *testing.T) {
			f, a, b, ok := ParseSeriesID(test.id)
			if ok != test.ok || f != test.f || a != test.a || b != test.b {
				t.Errorf("have (%v, %s, %s, %v), want (%v, %s, %s, %v)",
					f, a, b, ok, test.f, test.a, test.b, test.ok)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		s    string
		want time.Time
	}{
		{s: "20190101T08Z", want: time.Date(2019, 1, 1, 8, 0, 0, 0, time.UTC)},
		{s: "20190101T00-0800", want: time.Date(2019, 1, 1, 8, 0, 0, 0, time.UTC)},
		{s: "20191231T20-0500", want: time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC)},
	}
	for _, test := range tests {
		have, err := ParseTime(test.s)
		if err != nil {
			t.Fatal(err)
		}
		if !have.Equal(test.want) {
			t.Errorf("%s: have %v, want %v", test.s, have, test.want)
		}
	}
	if _, err := ParseTime("2019-01-01"); err == nil {
		t.Error("should be an error")
	}
}

func TestLoad(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	log, hook := test.NewNullLogger()
	d, err := Load(strings.NewReader(testFeed), 2019, reg, log)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("index", func(t *testing.T) {
		if len(d.NetGeneration.Index) != 8760 {
			t.Errorf("have %d hours, want 8760", len(d.NetGeneration.Index))
		}
		last := d.NetGeneration.Index[len(d.NetGeneration.Index)-1]
		if want := time.Date(2019, 12, 31, 23, 0, 0, 0, time.UTC); !last.Equal(want) {
			t.Errorf("have last hour %v, want %v", last, want)
		}
	})

	t.Run("columns", func(t *testing.T) {
		if len(d.NetGeneration.Columns) != len(reg.BAs()) {
			t.Errorf("have %d columns, want %d", len(d.NetGeneration.Columns), len(reg.BAs()))
		}
		if c := d.NetGeneration.Column("HQT"); c == nil {
			t.Error("missing BAs should have all-zero columns")
		}
		if d.NetGeneration.Column("US48") != nil {
			t.Error("aggregates should be skipped")
		}
	})

	t.Run("net generation", func(t *testing.T) {
		ng := d.NetGeneration.Total()
		if ng["CISO"] != 210 {
			t.Errorf("CISO: have %g, want 210", ng["CISO"])
		}
		// Duplicate hours: last value wins.
		if ng["BPAT"] != 25 {
			t.Errorf("BPAT: have %g, want 25", ng["BPAT"])
		}
	})

	t.Run("total interchange", func(t *testing.T) {
		if ti := d.TotalInterchange.Total()["CISO"]; ti != -22 {
			t.Errorf("have %g, want -22", ti)
		}
	})

	t.Run("exchange", func(t *testing.T) {
		want := []Pair{{From: "BPAT", To: "CISO"}, {From: "CISO", To: "BPAT"}}
		if len(d.Exchange.Pairs) != len(want) {
			t.Fatalf("have pairs %v, want %v", d.Exchange.Pairs, want)
		}
		for i, p := range want {
			if d.Exchange.Pairs[i] != p {
				t.Errorf("pair %d: have %v, want %v", i, d.Exchange.Pairs[i], p)
			}
		}
		tot := d.Exchange.Total()
		if v := tot[Pair{From: "BPAT", To: "CISO"}]; v != 12 {
			t.Errorf("BPAT-CISO: have %g, want 12", v)
		}
		if v := tot[Pair{From: "CISO", To: "BPAT"}]; v != -6 {
			t.Errorf("CISO-BPAT: have %g, want -6", v)
		}
		he := d.HourlyExchanges()
		if len(he) != 2*8760 {
			t.Fatalf("have %d hourly exchanges, want %d", len(he), 2*8760)
		}
		if he[1].From != "BPAT" || he[1].MWh != 7 || he[1].Time.Hour() != 1 {
			t.Errorf("have %+v", he[1])
		}
		// "20190101T00-0800" is 08:00 UTC.
		if v := d.Exchange.Values[1][8]; v != -6 {
			t.Errorf("have %g at 08:00 UTC, want -6", v)
		}
	})

	t.Run("anomalies", func(t *testing.T) {
		if n := d.Anomalies.Count(MalformedRecord); n != 1 {
			t.Errorf("malformed records: have %d, want 1", n)
		}
		if n := d.Anomalies.Count(MalformedPoint); n != 2 {
			t.Errorf("malformed points: have %d, want 2", n)
		}
		var warned bool
		for _, e := range hook.AllEntries() {
			if e.Data["anomaly"] == MalformedPoint && e.Data["count"] == 2 {
				warned = true
			}
		}
		if !warned {
			t.Error("anomalies should be logged with a count")
		}
	})
}

func TestLoadUnknownRegion(t *testing.T) {
	reg, err := region.New()
	if err != nil {
		t.Fatal(err)
	}
	log, _ := test.NewNullLogger()
	feed := `{"series_id":"EBA.XXXX-CISO.ID.H","data":[["20190101T00Z",5]]}`
	_, err = Load(strings.NewReader(feed), 2019, reg, log)
	var uerr lcierr.UnknownRegionError
	if !errors.As(err, &uerr) {
		t.Fatalf("have error %v, want UnknownRegionError", err)
	}
	if uerr.Code != "XXXX" {
		t.Errorf("have code %s, want XXXX", uerr.Code)
	}
}

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "eia")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	var zipped bytes.Buffer
	zw := zip.NewWriter(&zipped)
	w, err := zw.Create(BulkMember)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(testFeed)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var calls int
	fetch := func(ctx context.Context, url string) (io.ReadCloser, error) {
		calls++
		switch url {
		case "https://example.com/EBA.zip":
			return ioutil.NopCloser(bytes.NewReader(zipped.Bytes())), nil
		default:
			return nil, fmt.Errorf("not found")
		}
	}
	ctx := context.Background()

	t.Run("download", func(t *testing.T) {
		path := filepath.Join(dir, "bulk", "EBA.txt")
		for i := 0; i < 2; i++ {
			r, err := Open(ctx, path, "https://example.com/EBA.zip", fetch)
			if err != nil {
				t.Fatal(err)
			}
			b, err := ioutil.ReadAll(r)
			r.Close()
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != testFeed {
				t.Errorf("have %q, want the bulk file", b)
			}
		}
		if calls != 1 {
			t.Errorf("have %d downloads, want 1", calls)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		_, err := Open(ctx, filepath.Join(dir, "missing.txt"), "https://example.com/missing.zip", fetch)
		var derr lcierr.DataUnavailableError
		if !errors.As(err, &derr) {
			t.Fatalf("have error %v, want DataUnavailableError", err)
		}
		if lcierr.ExitCode(err) != lcierr.ExitDataMissing {
			t.Errorf("have exit code %d, want %d", lcierr.ExitCode(err), lcierr.ExitDataMissing)
		}
	})
}
