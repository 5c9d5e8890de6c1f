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

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// ValidateRequest checks required-presence and primitive types for every
// declared parameter, reading caller inputs through the accessor table.
// Full JSON-Schema semantics (formats, $ref, nested object shapes) are
// intentionally not evaluated here.
func (d *document) ValidateRequest(route Route, access RequestAccessors) []string {
	var errs []string
	for _, p := range route.Parameters {
		accessor := access[p.In]
		if accessor == nil {
			if p.Required {
				errs = append(errs, missingParam(p))
			}
			continue
		}
		v, ok := accessor(p.Name)
		if !ok {
			if p.Required {
				errs = append(errs, missingParam(p))
			}
			continue
		}
		if msg := d.checkType(v, p); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

func missingParam(p Parameter) string {
	return fmt.Sprintf("missing required parameter %q in %s", p.Name, p.In)
}

func (d *document) checkType(v interface{}, p Parameter) string {
	if v == nil {
		return ""
	}
	ok := true
	switch p.Type {
	case "string":
		ok = isString(v) || d.coerce.Strings && isScalar(v)
	case "integer":
		ok = isInteger(v) || d.coerce.Numbers && isIntegerString(v)
	case "number":
		ok = isNumber(v) || d.coerce.Numbers && isNumberString(v)
	case "boolean":
		ok = isBool(v) || d.coerce.Booleans && isBoolString(v)
	case "array":
		ok = reflect.ValueOf(v).Kind() == reflect.Slice
	}
	if !ok {
		return fmt.Sprintf("parameter %q in %s is not a valid %s: %v", p.Name, p.In, p.Type, v)
	}
	return ""
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func isInteger(v interface{}) bool {
	switch vv := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return vv == float32(int64(vv))
	case float64:
		return vv == float64(int64(vv))
	case json.Number:
		_, err := vv.Int64()
		return err == nil
	}
	return false
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return true
	}
	return false
}

func isScalar(v interface{}) bool {
	return isString(v) || isNumber(v) || isBool(v)
}

func isIntegerString(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isNumberString(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolString(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseBool(s)
	return err == nil
}
