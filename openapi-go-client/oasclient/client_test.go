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

package oasclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palantir/openapi-go-runtime/openapi-go-client/oasclient"
)

const petstoreSpec = `{
  "swagger": "2.0",
  "info": {"title": "petstore", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "parameters": [
          {"name": "limit", "in": "query", "type": "integer"},
          {"name": "tags", "in": "query", "type": "array", "collectionFormat": "csv"},
          {"name": "X-Request-ID", "in": "header", "type": "string", "required": true}
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
      "get": {
        "operationId": "getPet",
        "parameters": [
          {"name": "id", "in": "path", "type": "integer", "required": true}
        ]
      }
    },
    "/events": {
      "get": {
        "operationId": "watchEvents",
        "x-upgrade": true
      }
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*oasclient.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := oasclient.New(petstoreSpec, oasclient.WithBaseURL(server.URL))
	require.NoError(t, err)
	return client, server
}

func TestClient_CallBlocking(t *testing.T) {
	type recorded struct {
		method, path, query, reqID, contentType string
		body                                    []byte
	}
	var last recorded
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		last = recorded{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			reqID:       r.Header.Get("X-Request-Id"),
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	txn, err := client.Call(context.Background(), "createPet",
		oasclient.WithParam("pet", map[string]interface{}{"name": "rex"}))
	require.NoError(t, err)
	require.NotNil(t, txn)
	require.Nil(t, txn.Err)

	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "/pets", last.path)
	assert.Equal(t, "application/json", last.contentType)
	assert.JSONEq(t, `{"name": "rex"}`, string(last.body))

	assert.Equal(t, http.StatusCreated, txn.Response.Code)
	assert.JSONEq(t, `{"id": 1}`, string(txn.Response.Body))
	assert.Equal(t, "createPet", txn.Request.OperationID)

	txn, err = client.Call(context.Background(), "listPets", oasclient.WithParams(map[string]interface{}{
		"limit":        10,
		"tags":         []interface{}{"dog", "cat"},
		"X-Request-ID": "req-1",
	}))
	require.NoError(t, err)
	require.Nil(t, txn.Err)
	assert.Equal(t, "limit=10&tags=dog%2Ccat", last.query)
	assert.Equal(t, "req-1", last.reqID)
}

func TestClient_CallValidationFailure(t *testing.T) {
	served := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		served = true
	})

	// Required header missing: the transaction is synthesized locally and
	// the server is never contacted.
	txn, err := client.Call(context.Background(), "listPets")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.False(t, served)

	assert.Equal(t, http.StatusBadRequest, txn.Response.Code)
	require.NotNil(t, txn.Err)
	assert.Equal(t, "Invalid input", txn.Err.Message)
	assert.Equal(t, http.StatusBadRequest, txn.Err.Code)

	var payload struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(txn.Response.Body, &payload))
	require.NotEmpty(t, payload.Errors)
	assert.Contains(t, payload.Errors[0], "X-Request-ID")
}

func TestClient_UnknownOperation(t *testing.T) {
	client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

	txn, err := client.Call(context.Background(), "doesNotExist")
	require.Error(t, err)
	assert.Nil(t, txn)
	assert.True(t, oasclient.IsUnknownOperation(err))

	_, err = client.CallP(context.Background(), "doesNotExist").Await(context.Background())
	require.Error(t, err)
	assert.True(t, oasclient.IsUnknownOperation(err))
}

func TestClient_CallbackConvention(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	delivered := make(chan *oasclient.Transaction, 1)
	txn, err := client.Call(context.Background(), "getPet",
		oasclient.WithParam("id", 42),
		oasclient.WithCallback(func(txn *oasclient.Transaction) {
			delivered <- txn
		}))
	require.NoError(t, err)
	assert.Nil(t, txn, "callback convention returns no inline transaction")

	select {
	case txn = <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never invoked")
	}
	require.Nil(t, txn.Err)
	assert.Equal(t, http.StatusOK, txn.Response.Code)

	// Validation failures take the same asynchronous path.
	txn, err = client.Call(context.Background(), "getPet",
		oasclient.WithCallback(func(txn *oasclient.Transaction) {
			delivered <- txn
		}))
	require.NoError(t, err)
	assert.Nil(t, txn)
	select {
	case txn = <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never invoked")
	}
	require.NotNil(t, txn.Err)
	assert.Equal(t, http.StatusBadRequest, txn.Err.Code)
}

func TestClient_PromiseConvention(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 42, "name": "rex"}`))
	})

	txn, err := client.CallP(context.Background(), "getPet", oasclient.WithParam("id", 42)).
		Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, txn.Response.Code)

	// The suffixed entry point resolves to the same route.
	txn, err = client.CallP(context.Background(), "getPet_p", oasclient.WithParam("id", 42)).
		Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "getPet", txn.Request.OperationID)

	// A structured validation failure resolves rather than rejects, so the
	// transaction stays inspectable.
	txn, err = client.CallP(context.Background(), "getPet").Await(context.Background())
	require.NoError(t, err)
	require.NotNil(t, txn.Err)
	assert.Equal(t, http.StatusBadRequest, txn.Err.Code)
}

func TestClient_PromiseAwaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	promise := client.CallP(context.Background(), "getPet", oasclient.WithParam("id", 1))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := promise.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_UpgradeHandshakeRejection(t *testing.T) {
	// A plain 200 response never completes a protocol upgrade.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.CallP(context.Background(), "watchEvents").Await(context.Background())
	require.Error(t, err)
	assert.True(t, oasclient.IsHandshakeFailed(err))
}

func TestClient_AppDispatch(t *testing.T) {
	var seenPath, seenHost string
	app := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenHost = r.URL.Host
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 7}`))
	})

	client, err := oasclient.New(petstoreSpec, oasclient.WithApp(app))
	require.NoError(t, err)

	txn, err := client.Call(context.Background(), "getPet", oasclient.WithParam("id", 7))
	require.NoError(t, err)
	require.Nil(t, txn.Err)

	assert.Equal(t, "/pets/7", seenPath)
	assert.Equal(t, "app.local", seenHost)
	assert.Equal(t, http.StatusOK, txn.Response.Code)
	assert.JSONEq(t, `{"id": 7}`, string(txn.Response.Body))
}

func TestClient_SetBaseURL(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"first"`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"second"`))
	}))
	defer second.Close()

	client, err := oasclient.New(petstoreSpec, oasclient.WithBaseURL(first.URL))
	require.NoError(t, err)
	assert.Equal(t, first.URL, client.BaseURL())

	txn, err := client.Call(context.Background(), "getPet", oasclient.WithParam("id", 1))
	require.NoError(t, err)
	assert.Equal(t, `"first"`, string(txn.Response.Body))

	require.NoError(t, client.SetBaseURL(second.URL))
	txn, err = client.Call(context.Background(), "getPet", oasclient.WithParam("id", 1))
	require.NoError(t, err)
	assert.Equal(t, `"second"`, string(txn.Response.Body))
}

func TestClient_RequestHook(t *testing.T) {
	var authorization string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
	})
	withHook, err := oasclient.New(petstoreSpec,
		oasclient.WithBaseURL(client.BaseURL()),
		oasclient.WithRequestHook(func(req *oasclient.Request) {
			req.Header.Set("Authorization", "Bearer hook-token")
		}))
	require.NoError(t, err)

	_, err = withHook.Call(context.Background(), "getPet", oasclient.WithParam("id", 3))
	require.NoError(t, err)
	assert.Equal(t, "Bearer hook-token", authorization)
}
