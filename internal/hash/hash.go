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

// Package hash computes content keys for the objects written to an
// inventory package, and the name-based UUIDs derived from them.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"reflect"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
)

// Namespace is the namespace of all identifiers created by UUID.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/spatialmodel/elci"))

// Hash returns a hash key for the specified object. Objects
// that implement fmt.Stringer are keyed by their string.
// Maps are hashed in sorted key order.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()
	if !hasMap(object) {
		e := gob.NewEncoder(h)
		if err := e.Encode(object); err == nil {
			return fmt.Sprintf("%x", h.Sum(nil))
		}
		h.Reset()
	}
	// gob does not order map keys and cannot encode nil
	// or some unexported values; use spew instead.
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// hasMap reports whether object is a map. Maps nested
// within other values are not detected.
func hasMap(object interface{}) bool {
	return object != nil && reflect.TypeOf(object).Kind() == reflect.Map
}

// UUID returns a version 5 UUID identifying an object of the given
// kind and name. Any content further keys the identifier, so that
// objects whose content changes also change identity.
func UUID(kind, name string, content ...interface{}) string {
	key := kind + "/" + name
	for _, c := range content {
		key += "/" + Hash(c)
	}
	return uuid.NewSHA1(Namespace, []byte(key)).String()
}
