// Copyright (c) 2021 Palantir Technologies. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oasclient

import (
	"sort"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// PromiseSuffix is appended to each operation name to form its
// promise-convention entry point in the operation table.
const PromiseSuffix = "_p"

type operationEntry struct {
	route   oasspec.Route
	promise bool
}

// Descriptor is the compiled, cached, read-only operation table for one
// specification. Every route declaring an operationId contributes two
// entries: the plain name and the promise-suffixed name. Many client
// instances may share one descriptor; it is never mutated after compilation.
type Descriptor struct {
	schema oasspec.Schema
	ops    map[string]operationEntry
}

func newDescriptor(schema oasspec.Schema) *Descriptor {
	d := &Descriptor{
		schema: schema,
		ops:    map[string]operationEntry{},
	}
	routes, ok := schema.Routes()
	if !ok {
		return d
	}
	for _, route := range routes {
		if route.OperationID == "" {
			// Not callable by name; reachable only with the raw route.
			continue
		}
		d.ops[route.OperationID] = operationEntry{route: route}
		d.ops[route.OperationID+PromiseSuffix] = operationEntry{route: route, promise: true}
	}
	return d
}

// Schema returns the validated schema handle the descriptor was compiled from.
func (d *Descriptor) Schema() oasspec.Schema {
	return d.schema
}

// Operations returns every registered entry point name, sorted.
func (d *Descriptor) Operations() []string {
	names := make([]string, 0, len(d.ops))
	for name := range d.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Route returns the compiled route registered under name (plain or
// promise-suffixed).
func (d *Descriptor) Route(name string) (oasspec.Route, bool) {
	entry, ok := d.ops[name]
	return entry.route, ok
}

func (d *Descriptor) lookup(name string) (operationEntry, bool) {
	entry, ok := d.ops[name]
	return entry, ok
}
