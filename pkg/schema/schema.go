// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package schema holds the object-number to descriptor dictionary the log
// reader consults while decoding records. It is populated once at
// startup from the catalog and is read-only for the rest of the process;
// the single-threaded orchestrator (see the concurrency design) means no
// locking is required after Seed returns.
package schema

import "github.com/philipgreat/OpenLogReplicator/pkg/catalog"

// Dictionary maps an object number to its immutable schema descriptor.
type Dictionary struct {
	byObjn map[int64]catalog.Object
}

// NewDictionary returns an empty dictionary; call Seed once before
// streaming begins.
func NewDictionary() *Dictionary {
	return &Dictionary{byObjn: make(map[int64]catalog.Object)}
}

// Seed registers every object returned by the catalog's schema-seed
// query. Calling Seed more than once is a no-op for objects already
// registered, matching the original's addToDict ("first registration
// wins").
func (d *Dictionary) Seed(objects []catalog.Object) {
	for _, obj := range objects {
		if _, exists := d.byObjn[obj.Objn]; !exists {
			d.byObjn[obj.Objn] = obj
		}
	}
}

// Lookup returns the object registered for objn, if any.
func (d *Dictionary) Lookup(objn int64) (catalog.Object, bool) {
	obj, ok := d.byObjn[objn]
	return obj, ok
}

// Len reports the number of registered objects.
func (d *Dictionary) Len() int { return len(d.byObjn) }
