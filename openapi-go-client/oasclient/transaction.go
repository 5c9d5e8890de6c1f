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
	"net/http"
	"net/url"

	"github.com/palantir/pkg/uuid"
)

// Request is the outbound request descriptor built for one operation call.
// It is built fresh per call and never reused.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header

	// Body holds the resolved body content value; Form holds the formData
	// bucket keyed by parameter name. When both are present the body wins.
	Body    interface{}
	Form    map[string]interface{}
	BodySet bool

	// ContentKind names the registered content kind that supplied Body.
	// Empty means the body came from a declared body parameter and is
	// encoded as JSON.
	ContentKind string

	// OperationID tags the request for downstream correlation by observers.
	OperationID string

	// Upgrade marks a protocol-upgrade (handshake) request.
	Upgrade bool

	InstanceID uuid.UUID

	// Wire form, populated by the transport's Assemble.
	wireBody    []byte
	contentType string
}

// Response is the completed-exchange half of a Transaction.
type Response struct {
	Code   int         `json:"code"`
	Header http.Header `json:"headers"`
	Body   []byte      `json:"body"`
}

// TransactionError is the data-bearing error attached to a failed
// transaction. Code is zero when the failure carries no structured code.
type TransactionError struct {
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func (e *TransactionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

// Transaction is the uniform result carrier for one operation call. Both
// parameter-validation failures and transport-level failures are reported
// through it so callers have a single inspection path: check Err before
// trusting Response.
type Transaction struct {
	Request  *Request          `json:"request"`
	Response Response          `json:"response"`
	Err      *TransactionError `json:"error,omitempty"`

	// Handshaken reports that a protocol-upgrade request completed its
	// handshake. Always false for plain request/response exchanges.
	Handshaken bool `json:"-"`
}
