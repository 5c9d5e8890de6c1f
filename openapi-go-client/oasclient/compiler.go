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
	"sync"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// descriptorCache is process-wide and write-once per specification
// identity; descriptors are cached for the process lifetime with no
// eviction. Compilation happens outside the lock, so two concurrent
// compilations of one identity may race; the loser's descriptor is
// discarded whole and callers never observe a partial operation table.
var descriptorCache = struct {
	sync.Mutex
	m map[string]*Descriptor
}{m: map[string]*Descriptor{}}

// CompileDescriptor resolves and validates a specification source and
// returns its descriptor, reusing a previously-compiled descriptor for the
// same specification identity. Compilation is all-or-nothing: if the schema
// reports any validation error the full error list is surfaced (see
// SpecErrors) and nothing is cached.
func CompileDescriptor(source interface{}, provider oasspec.Provider, coerce oasspec.CoerceOptions) (*Descriptor, error) {
	identity, err := specIdentity(source)
	if err != nil {
		return nil, err
	}

	descriptorCache.Lock()
	cached, ok := descriptorCache.m[identity]
	descriptorCache.Unlock()
	if ok {
		return cached, nil
	}

	schema, err := provider.Resolve(source, coerce)
	if err != nil {
		return nil, err
	}
	if errs := schema.Errors(); len(errs) > 0 {
		return nil, errSpecInvalid(identity, errs)
	}
	descriptor := newDescriptor(schema)

	descriptorCache.Lock()
	defer descriptorCache.Unlock()
	if winner, ok := descriptorCache.m[identity]; ok {
		return winner, nil
	}
	descriptorCache.m[identity] = descriptor
	return descriptor, nil
}
