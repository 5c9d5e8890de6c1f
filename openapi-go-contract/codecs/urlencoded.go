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

package codecs

import (
	"fmt"
	"io"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
	werror "github.com/palantir/witchcraft-go-error"
)

// FormURLEncoded codec encodes and decodes application/x-www-form-urlencoded
// bodies. Encoding accepts url.Values, a map of scalars or scalar slices, or
// a struct (encoded via github.com/gorilla/schema).
var FormURLEncoded Codec = codecFormURLEncoded{}

var (
	formEncoder = schema.NewEncoder()
	formDecoder = schema.NewDecoder()
)

type codecFormURLEncoded struct{}

func (codecFormURLEncoded) Accept() string {
	return contentTypeForm
}

func (c codecFormURLEncoded) Decode(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return werror.Wrap(err, "read failed")
	}
	return c.Unmarshal(data, v)
}

func (codecFormURLEncoded) Unmarshal(data []byte, v interface{}) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return werror.Wrap(err, "failed to parse url-encoded form")
	}
	if target, ok := v.(*url.Values); ok {
		*target = values
		return nil
	}
	return werror.Wrap(formDecoder.Decode(v, values), "schema.Decode")
}

func (codecFormURLEncoded) ContentType() string {
	return contentTypeForm
}

func (c codecFormURLEncoded) Encode(w io.Writer, v interface{}) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return werror.Wrap(err, "write failed")
}

func (c codecFormURLEncoded) Marshal(v interface{}) ([]byte, error) {
	values, err := formValues(v)
	if err != nil {
		return nil, err
	}
	return []byte(values.Encode()), nil
}

func formValues(v interface{}) (url.Values, error) {
	switch value := v.(type) {
	case url.Values:
		return value, nil
	case map[string][]string:
		return url.Values(value), nil
	case map[string]interface{}:
		values := make(url.Values, len(value))
		for k, entry := range value {
			appendFormValue(values, k, entry)
		}
		return values, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, werror.Error("failed to form-encode unsupported type",
			werror.SafeParam("type", fmt.Sprintf("%T", v)))
	}
	values := make(url.Values)
	if err := formEncoder.Encode(rv.Interface(), values); err != nil {
		return nil, werror.Wrap(err, "schema.Encode")
	}
	return values, nil
}

func appendFormValue(values url.Values, key string, v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			values.Add(key, fmt.Sprintf("%v", rv.Index(i).Interface()))
		}
		return
	}
	values.Add(key, fmt.Sprintf("%v", v))
}
