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
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/elci/internal/tally"
	"github.com/spatialmodel/elci/lcierr"
	"github.com/spatialmodel/elci/region"
)

// Family is a family of EIA-930 series.
type Family int

const (
	// NetGeneration series have IDs in the format "EBA.{BA}-ALL.NG.H".
	NetGeneration Family = iota + 1

	// TotalInterchange series have IDs in the format "EBA.{BA}-ALL.TI.H".
	TotalInterchange

	// Exchange series have IDs in the format "EBA.{A}-{B}.ID.H".
	Exchange
)

func (f Family) String() string {
	switch f {
	case NetGeneration:
		return "NG"
	case TotalInterchange:
		return "TI"
	case Exchange:
		return "ID"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Anomaly kinds recorded while loading.
const (
	MalformedRecord = "malformed record"
	MalformedPoint  = "malformed data point"
	SelfExchange    = "self exchange"
)

// ParseSeriesID returns the family and region codes of the given series
// ID. ok is false if the ID is not one of the three families of
// interest. For NetGeneration and TotalInterchange, b is "ALL".
func ParseSeriesID(id string) (f Family, a, b string, ok bool) {
	const prefix, suffix = "EBA.", ".H"
	if !strings.HasPrefix(id, prefix) || !strings.HasSuffix(id, suffix) {
		return 0, "", "", false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(id, prefix), suffix)
	parts := strings.Split(body, ".")
	if len(parts) != 2 {
		return 0, "", "", false
	}
	codes := strings.SplitN(parts[0], "-", 2)
	if len(codes) != 2 || codes[0] == "" || codes[1] == "" {
		return 0, "", "", false
	}
	a, b = codes[0], codes[1]
	switch parts[1] {
	case "NG":
		f = NetGeneration
	case "TI":
		f = TotalInterchange
	case "ID":
		f = Exchange
	default:
		return 0, "", "", false
	}
	if (f == Exchange) == (b == "ALL") {
		return 0, "", "", false
	}
	return f, a, b, true
}

// timeLayout matches both "20190101T08Z" and "20190101T08-0800".
const timeLayout = "20060102T15Z0700"

// ParseTime parses an EIA-930 timestamp and returns the UTC hour that
// it falls within.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Hour), nil
}

// Data holds the series for one analysis year.
type Data struct {
	Year int

	// NetGeneration holds net generation in MWh for every BA in the
	// region registry. BAs absent from the feed have all-zero columns.
	NetGeneration *Frame

	// TotalInterchange holds total interchange in MWh for every BA in
	// the region registry.
	TotalInterchange *Frame

	// Exchange holds the reported BA-to-BA exchanges in MWh.
	Exchange *ExchangeFrame

	// Anomalies holds the records that were skipped.
	Anomalies tally.Tally
}

type record struct {
	SeriesID string              `json:"series_id"`
	Data     [][]json.RawMessage `json:"data"`
}

// Load reads the newline-delimited JSON bulk data in r and returns the
// series for the given calendar year (UTC). Malformed records are
// skipped; a region code that is absent from reg causes an
// UnknownRegionError.
func Load(r io.Reader, year int, reg *region.Registry, log logrus.FieldLogger) (*Data, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	index := hours(year)
	start := index[0]
	d := &Data{Year: year}

	ng := make(map[string][]float64)
	ti := make(map[string][]float64)
	ex := make(map[Pair][]float64)

	checkBA := func(code string) (keep bool, err error) {
		rg, err := reg.Lookup(code)
		if err != nil {
			return false, err
		}
		return rg.Kind == region.BA, nil
	}

	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		b, readErr := br.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("eia: reading bulk data: %v", readErr)
		}
		b = bytes.TrimSpace(b)
		if len(b) > 0 {
			if err := d.parseLine(b, line, index, start, reg, checkBA, ng, ti, ex); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	bas := reg.BAs()
	d.NetGeneration = fill(index, bas, ng)
	d.TotalInterchange = fill(index, bas, ti)

	pairs := make([]Pair, 0, len(ex))
	for p := range ex {
		pairs = append(pairs, p)
	}
	sortPairs(pairs)
	d.Exchange = &ExchangeFrame{Index: index, Pairs: pairs, Values: make([][]float64, len(pairs))}
	for i, p := range pairs {
		d.Exchange.Values[i] = ex[p]
	}

	log.WithFields(logrus.Fields{
		"year":    year,
		"ng":      len(ng),
		"ti":      len(ti),
		"pairs":   len(pairs),
		"skipped": d.Anomalies.Total(),
	}).Info("eia: loaded bulk interchange data")
	d.Anomalies.Log(log, "eia")
	return d, nil
}

func (d *Data) parseLine(b []byte, line int, index []time.Time, start time.Time,
	reg *region.Registry, checkBA func(string) (bool, error),
	ng, ti map[string][]float64, ex map[Pair][]float64) error {

	// Skip the JSON decoding of records we aren't interested in.
	if !bytes.Contains(b, []byte(`"EBA.`)) {
		return nil
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		d.Anomalies.Add(MalformedRecord, lcierr.ParseError{Source: "bulk", Line: line, Record: truncate(string(b)), Err: err}.Error())
		return nil
	}
	f, a, bCode, ok := ParseSeriesID(rec.SeriesID)
	if !ok {
		return nil
	}
	var dst []float64
	switch f {
	case NetGeneration, TotalInterchange:
		if reg.IsAggregate(a) {
			return nil
		}
		keep, err := checkBA(a)
		if err != nil {
			return fmt.Errorf("eia: series %s: %w", rec.SeriesID, err)
		}
		if !keep {
			return nil
		}
		m := ng
		if f == TotalInterchange {
			m = ti
		}
		if m[a] == nil {
			m[a] = make([]float64, len(index))
		}
		dst = m[a]
	case Exchange:
		if reg.IsAggregate(a) || reg.IsAggregate(bCode) {
			return nil
		}
		for _, c := range []string{a, bCode} {
			keep, err := checkBA(c)
			if err != nil {
				return fmt.Errorf("eia: series %s: %w", rec.SeriesID, err)
			}
			if !keep {
				return nil
			}
		}
		p := Pair{From: a, To: bCode}
		if err := p.valid(); err != nil {
			d.Anomalies.Add(SelfExchange, rec.SeriesID)
			return nil
		}
		if ex[p] == nil {
			ex[p] = make([]float64, len(index))
		}
		dst = ex[p]
	}

	for _, point := range rec.Data {
		t, v, err := parsePoint(point)
		if err != nil {
			d.Anomalies.Add(MalformedPoint, fmt.Sprintf("%s line %d: %v", rec.SeriesID, line, err))
			continue
		}
		i := int(t.Sub(start) / time.Hour)
		if i < 0 || i >= len(index) {
			continue
		}
		dst[i] = v
	}
	return nil
}

func parsePoint(point []json.RawMessage) (time.Time, float64, error) {
	if len(point) != 2 {
		return time.Time{}, 0, fmt.Errorf("data point has %d elements, want 2", len(point))
	}
	var ts string
	if err := json.Unmarshal(point[0], &ts); err != nil {
		return time.Time{}, 0, fmt.Errorf("timestamp: %v", err)
	}
	t, err := ParseTime(ts)
	if err != nil {
		return time.Time{}, 0, err
	}
	var v *float64
	if err := json.Unmarshal(point[1], &v); err != nil {
		return time.Time{}, 0, fmt.Errorf("value: %v", err)
	}
	if v == nil {
		return time.Time{}, 0, fmt.Errorf("null value at %s", ts)
	}
	return t, *v, nil
}

func fill(index []time.Time, columns []string, data map[string][]float64) *Frame {
	f := newFrame(index, append([]string(nil), columns...))
	for c, v := range data {
		if i, ok := f.columnIndex[c]; ok {
			f.Values[i] = v
		}
	}
	return f
}

func truncate(s string) string {
	const max = 80
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// HourlyExchanges returns every hourly BA-to-BA exchange record, ordered
// by pair and then by time.
func (d *Data) HourlyExchanges() []HourlyExchange {
	o := make([]HourlyExchange, 0, len(d.Exchange.Pairs)*len(d.Exchange.Index))
	d.Exchange.Each(func(e HourlyExchange) { o = append(o, e) })
	return o
}
