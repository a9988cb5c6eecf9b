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

// Package tally counts recoverable data anomalies so that they can be
// reported once per stage with a count and an example, rather than once
// per offending record.
package tally

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Tally counts anomalies by kind and keeps the first example of each.
// The zero value is ready to use.
type Tally struct {
	counts    map[string]int
	exemplars map[string]string
}

// Add records one anomaly of the given kind.
func (t *Tally) Add(kind, exemplar string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
		t.exemplars = make(map[string]string)
	}
	if t.counts[kind] == 0 {
		t.exemplars[kind] = exemplar
	}
	t.counts[kind]++
}

// Count returns the number of anomalies of the given kind.
func (t *Tally) Count(kind string) int { return t.counts[kind] }

// Exemplar returns the first recorded example of the given kind.
func (t *Tally) Exemplar(kind string) string { return t.exemplars[kind] }

// Total returns the number of anomalies of all kinds.
func (t *Tally) Total() int {
	var n int
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Kinds returns the recorded anomaly kinds in ascending order.
func (t *Tally) Kinds() []string {
	o := make([]string, 0, len(t.counts))
	for k := range t.counts {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Log writes one warning per anomaly kind.
func (t *Tally) Log(log logrus.FieldLogger, stage string) {
	for _, k := range t.Kinds() {
		log.WithFields(logrus.Fields{
			"stage":    stage,
			"anomaly":  k,
			"count":    t.counts[k],
			"exemplar": t.exemplars[k],
		}).Warn("skipped records")
	}
}
