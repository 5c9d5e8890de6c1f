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

package codecs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/codecs"
)

type pet struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	in := pet{Name: "rex", Tags: []string{"big"}}
	data, err := codecs.JSON.Marshal(in)
	require.NoError(t, err)

	var out pet
	require.NoError(t, codecs.JSON.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestJSONCodec_EncodeDisablesHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codecs.JSON.Encode(&buf, pet{Name: "a&b"}))
	assert.Contains(t, buf.String(), "a&b")
}

func TestSNAPPYCodec_RoundTrip(t *testing.T) {
	wrapped := codecs.SNAPPY(codecs.JSON)
	data, err := wrapped.Marshal(pet{Name: "rex"})
	require.NoError(t, err)

	var out pet
	require.NoError(t, wrapped.Unmarshal(data, &out))
	assert.Equal(t, "rex", out.Name)
}
