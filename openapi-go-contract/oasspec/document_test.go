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

package oasspec_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

const petstoreJSON = `{
  "swagger": "2.0",
  "info": {"title": "petstore", "version": "1.0.0"},
  "host": "petstore.example.com",
  "basePath": "/v2",
  "schemes": ["https"],
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "parameters": [
          {"name": "tags", "in": "query", "type": "array", "collectionFormat": "csv"},
          {"name": "limit", "in": "query", "type": "integer"}
        ]
      },
      "post": {
        "operationId": "createPet",
        "parameters": [
          {"name": "pet", "in": "body", "required": true, "schema": {"type": "object"}}
        ]
      }
    },
    "/pets/{id}": {
      "parameters": [
        {"name": "id", "in": "path", "required": true, "type": "integer"}
      ],
      "get": {"operationId": "getPet"}
    },
    "/events": {
      "get": {"operationId": "watchEvents", "x-upgrade": true}
    }
  }
}`

const petstoreYAML = `swagger: "2.0"
info:
  title: petstore
  version: 1.0.0
host: petstore.example.com
basePath: /v2
schemes:
  - https
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: tags
          in: query
          type: array
          collectionFormat: csv
        - name: limit
          in: query
          type: integer
    post:
      operationId: createPet
      parameters:
        - name: pet
          in: body
          required: true
          schema:
            type: object
  /pets/{id}:
    parameters:
      - name: id
        in: path
        required: true
        type: integer
    get:
      operationId: getPet
  /events:
    get:
      operationId: watchEvents
      x-upgrade: true
`

func resolve(t *testing.T, source interface{}) oasspec.Schema {
	t.Helper()
	schema, err := oasspec.NewDocumentProvider().Resolve(source, oasspec.DefaultCoerce())
	require.NoError(t, err)
	return schema
}

func TestDocumentProvider_JSONAndYAMLAgree(t *testing.T) {
	jsonSchema := resolve(t, petstoreJSON)
	yamlSchema := resolve(t, petstoreYAML)
	require.Empty(t, jsonSchema.Errors())
	require.Empty(t, yamlSchema.Errors())

	jsonRoutes, ok := jsonSchema.Routes()
	require.True(t, ok)
	yamlRoutes, ok := yamlSchema.Routes()
	require.True(t, ok)
	assert.Equal(t, jsonRoutes, yamlRoutes)
}

func TestDocumentProvider_Routes(t *testing.T) {
	schema := resolve(t, petstoreJSON)
	routes, ok := schema.Routes()
	require.True(t, ok)

	byOp := map[string]oasspec.Route{}
	for _, route := range routes {
		byOp[route.OperationID] = route
	}
	require.Len(t, byOp, 4)

	getPet := byOp["getPet"]
	assert.Equal(t, http.MethodGet, getPet.Method)
	assert.Equal(t, "/pets/{id}", getPet.PathTemplate)
	// Path-level parameters are merged into the operation.
	require.Len(t, getPet.Parameters, 1)
	assert.Equal(t, oasspec.InPath, getPet.Parameters[0].In)
	assert.True(t, getPet.Parameters[0].Required)

	assert.True(t, byOp["watchEvents"].Upgrade)
	assert.False(t, byOp["listPets"].Upgrade)

	defaulter, ok := schema.(oasspec.BaseURLer)
	require.True(t, ok)
	assert.Equal(t, "https://petstore.example.com/v2", defaulter.BaseURL())
}

func TestDocumentProvider_OAS3(t *testing.T) {
	schema := resolve(t, `{
	  "openapi": "3.0.1",
	  "servers": [{"url": "https://api.example.com/v1"}],
	  "paths": {
	    "/items": {
	      "post": {
	        "operationId": "createItem",
	        "parameters": [{"name": "dryRun", "in": "query", "schema": {"type": "boolean"}}],
	        "requestBody": {"required": true}
	      }
	    }
	  }
	}`)
	require.Empty(t, schema.Errors())
	routes, ok := schema.Routes()
	require.True(t, ok)
	require.Len(t, routes, 1)

	route := routes[0]
	assert.Equal(t, "createItem", route.OperationID)
	require.Len(t, route.Parameters, 2)
	assert.Equal(t, "boolean", route.Parameters[0].Type)
	// The requestBody is surfaced as a required body parameter.
	assert.Equal(t, oasspec.InBody, route.Parameters[1].In)
	assert.True(t, route.Parameters[1].Required)

	assert.Equal(t, "https://api.example.com/v1", schema.(oasspec.BaseURLer).BaseURL())
}

func TestDocumentProvider_Errors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		doc      string
		expected string
	}{
		{
			name:     "missing version",
			doc:      `{"info": {"title": "x"}}`,
			expected: "document declares neither a swagger nor an openapi version",
		},
		{
			name:     "unsupported swagger version",
			doc:      `{"swagger": "1.2", "paths": {}}`,
			expected: `unsupported swagger version "1.2"`,
		},
		{
			name: "duplicate operationId",
			doc: `{"swagger": "2.0", "paths": {
				"/a": {"get": {"operationId": "dup"}},
				"/b": {"get": {"operationId": "dup"}}
			}}`,
			expected: `duplicate operationId "dup" (GET /a and GET /b)`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			schema := resolve(t, tc.doc)
			assert.Contains(t, schema.Errors(), tc.expected)
		})
	}
}

func TestDocumentProvider_ValidSchemaWithoutRoutes(t *testing.T) {
	schema := resolve(t, `{"swagger": "2.0", "info": {"title": "x", "version": "1"}}`)
	assert.Empty(t, schema.Errors())
	_, ok := schema.Routes()
	assert.False(t, ok)
}

func TestDocumentProvider_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstoreYAML), 0644))

	schema := resolve(t, path)
	routes, ok := schema.Routes()
	require.True(t, ok)
	assert.Len(t, routes, 4)
}

func TestDocumentProvider_URLSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		_, _ = rw.Write([]byte(petstoreJSON))
	}))
	defer server.Close()

	schema := resolve(t, server.URL+"/spec.json")
	routes, ok := schema.Routes()
	require.True(t, ok)
	assert.Len(t, routes, 4)
}

func TestDocumentProvider_ParsedSource(t *testing.T) {
	schema := resolve(t, map[string]interface{}{
		"swagger": "2.0",
		"paths": map[string]interface{}{
			"/ping": map[string]interface{}{
				"get": map[string]interface{}{"operationId": "ping"},
			},
		},
	})
	routes, ok := schema.Routes()
	require.True(t, ok)
	require.Len(t, routes, 1)
	assert.Equal(t, "ping", routes[0].OperationID)
}
