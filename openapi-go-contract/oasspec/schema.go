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

// Package oasspec defines the contract between the client runtime and the
// specification/validation collaborator: the compiled route model, the
// narrow accessor protocol used to validate an outbound request, and a
// default provider that resolves OpenAPI v2/v3 documents from JSON or YAML.
package oasspec

import (
	"strings"

	werror "github.com/palantir/witchcraft-go-error"
)

// ParamAccessor reports the value supplied for a named parameter and
// whether the caller supplied it at all.
type ParamAccessor func(name string) (interface{}, bool)

// RequestAccessors is the location-keyed accessor table a request builder
// hands to the validator. The validator reads caller inputs exclusively
// through it and never sees the outbound request itself.
type RequestAccessors map[ParamLocation]ParamAccessor

// Schema is the validated handle on one specification document. The runtime
// treats validation as a black box behind this interface and only consumes
// its verdicts.
type Schema interface {
	// Errors returns every validation error reported for the document
	// itself, in document order. A non-empty result makes the document
	// unusable for client generation.
	Errors() []string

	// Routes returns the declared operations when the document is
	// recognizably an API surface. Valid documents that declare no API
	// (for example a bare data schema) return ok=false.
	Routes() (routes []Route, ok bool)

	// ValidateRequest checks caller-supplied inputs for one route, reading
	// them through the accessor table. It returns an ordered list of error
	// strings; empty means the request is well-formed.
	ValidateRequest(route Route, access RequestAccessors) []string
}

// BaseURLer is optionally implemented by schemas whose document declares a
// default server address (host/basePath in v2, servers[0] in v3).
type BaseURLer interface {
	BaseURL() string
}

// Provider resolves a specification source into a validated Schema.
type Provider interface {
	Resolve(source interface{}, coerce CoerceOptions) (Schema, error)
}

// CoerceOptions selects which mismatched primitive kinds the validator
// accepts after conversion. All three are enabled by default.
type CoerceOptions struct {
	Booleans bool
	Numbers  bool
	Strings  bool
}

// DefaultCoerce enables coercion of booleans, numbers and strings.
func DefaultCoerce() CoerceOptions {
	return CoerceOptions{Booleans: true, Numbers: true, Strings: true}
}

// ParseCoerce parses a comma-separated subset of "booleans,numbers,strings".
func ParseCoerce(s string) (CoerceOptions, error) {
	var opts CoerceOptions
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "booleans":
			opts.Booleans = true
		case "numbers":
			opts.Numbers = true
		case "strings":
			opts.Strings = true
		case "":
		default:
			return CoerceOptions{}, werror.Error("unknown coercion kind",
				werror.SafeParam("kind", strings.TrimSpace(part)))
		}
	}
	return opts, nil
}
