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
	"fmt"
	"reflect"
	"strings"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// asSlice normalizes a caller-supplied parameter value: absent yields nil,
// a scalar is wrapped as a one-element slice, and an existing slice passes
// through element-wise.
func asSlice(name string, params map[string]interface{}) []interface{} {
	v, ok := params[name]
	if !ok {
		return nil
	}
	if v != nil {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
			out := make([]interface{}, rv.Len())
			for i := range out {
				out[i] = rv.Index(i).Interface()
			}
			return out
		}
	}
	return []interface{}{v}
}

// encodeCollection serializes a query or header parameter's values per the
// parameter's collection format. The format is the declared one when
// present, csv when the declared type is array, and none otherwise. A multi
// or unformatted value stays one wire entry per element; every other format
// joins into a single entry. Path and body values are never joined.
func encodeCollection(values []interface{}, p oasspec.Parameter) []string {
	format := p.CollectionFormat
	if format == "" && p.Type == "array" {
		format = oasspec.FormatCSV
	}
	switch format {
	case "", oasspec.FormatMulti:
		return stringifyAll(values)
	case oasspec.FormatPipes:
		return []string{strings.Join(stringifyAll(values), "|")}
	case oasspec.FormatSSV:
		return []string{strings.Join(stringifyAll(values), " ")}
	case oasspec.FormatTSV:
		return []string{strings.Join(stringifyAll(values), "\t")}
	default:
		return []string{strings.Join(stringifyAll(values), ",")}
	}
}

func stringifyAll(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = stringify(v)
	}
	return out
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
