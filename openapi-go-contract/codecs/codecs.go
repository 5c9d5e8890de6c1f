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

// Package codecs provides the content codecs the client runtime registers
// as content kinds: encoders and decoders for request and response bodies.
package codecs

import (
	"io"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeYAML     = "application/yaml"
	contentTypePlain    = "text/plain"
	contentTypeBinary   = "application/octet-stream"
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeForm     = "application/x-www-form-urlencoded"
)

// Encoder serializes request bodies.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v interface{}) error
	Marshal(v interface{}) ([]byte, error)
}

// Decoder deserializes response bodies.
type Decoder interface {
	Accept() string
	Decode(r io.Reader, v interface{}) error
	Unmarshal(data []byte, v interface{}) error
}

// Codec encodes and decodes one content type.
type Codec interface {
	Encoder
	Decoder
}
