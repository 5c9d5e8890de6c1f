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
	werror "github.com/palantir/witchcraft-go-error"
	wparams "github.com/palantir/witchcraft-go-params"
)

const (
	errorKindParam  = "errorKind"
	specErrorsParam = "specErrors"

	kindSpecInvalid      = "specInvalid"
	kindUnknownOperation = "unknownOperation"
	kindHandshakeFailed  = "handshakeFailed"
)

func errSpecInvalid(identity string, specErrors []string) error {
	return werror.Error("specification document failed validation",
		werror.SafeParam(errorKindParam, kindSpecInvalid),
		werror.SafeParam("specIdentity", identity),
		werror.Params(wparams.NewSafeParamStorer(map[string]interface{}{
			specErrorsParam: specErrors,
		})))
}

func errUnknownOperation(name string) error {
	return werror.Error("unknown operation",
		werror.SafeParam(errorKindParam, kindUnknownOperation),
		werror.UnsafeParam("operation", name))
}

func errHandshakeFailed(operation string) error {
	return werror.Error("protocol upgrade handshake did not complete",
		werror.SafeParam(errorKindParam, kindHandshakeFailed),
		werror.UnsafeParam("operation", operation))
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	safe, _ := werror.ParamsFromError(err)
	kind, _ := safe[errorKindParam].(string)
	return kind
}

// IsSpecInvalid reports whether err means descriptor compilation was aborted
// because the specification document itself failed validation.
func IsSpecInvalid(err error) bool {
	return errorKind(err) == kindSpecInvalid
}

// IsUnknownOperation reports whether err means an operation name had no
// entry in the descriptor's operation table.
func IsUnknownOperation(err error) bool {
	return errorKind(err) == kindUnknownOperation
}

// IsHandshakeFailed reports whether err means a protocol-upgrade request did
// not yield an upgraded connection.
func IsHandshakeFailed(err error) bool {
	return errorKind(err) == kindHandshakeFailed
}

// SpecErrors returns the document validation errors carried by a
// SpecInvalid error, or nil.
func SpecErrors(err error) []string {
	if err == nil {
		return nil
	}
	safe, _ := werror.ParamsFromError(err)
	list, _ := safe[specErrorsParam].([]string)
	return list
}
