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

package oasspec

// ParamLocation identifies where a declared parameter is carried on the wire.
type ParamLocation string

const (
	InPath     ParamLocation = "path"
	InQuery    ParamLocation = "query"
	InHeader   ParamLocation = "header"
	InFormData ParamLocation = "formData"
	InBody     ParamLocation = "body"
)

// Collection formats for multi-valued query and header parameters.
const (
	FormatCSV   = "csv"
	FormatSSV   = "ssv"
	FormatTSV   = "tsv"
	FormatPipes = "pipes"
	FormatMulti = "multi"
)

// Parameter is one declared operation parameter, sourced from the
// specification document and never mutated after compilation.
type Parameter struct {
	Name             string
	In               ParamLocation
	Type             string
	Required         bool
	CollectionFormat string
}

// Route is the compiled {method, path template, parameters} triple for one
// operation. Routes are owned by a descriptor and shared read-only.
type Route struct {
	OperationID  string
	Method       string
	PathTemplate string
	Parameters   []Parameter

	// Upgrade marks a route that performs a protocol-upgrade handshake
	// (declared via the x-upgrade extension) instead of a plain exchange.
	Upgrade bool
}
