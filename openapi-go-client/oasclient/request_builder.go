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
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/palantir/pkg/uuid"
	werror "github.com/palantir/witchcraft-go-error"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/codecs"
	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

type requestBuilder struct {
	schema    oasspec.Schema
	transport Transport
	hook      RequestHook

	// bodyPrecedence overrides the content-kind scan order used to resolve
	// an implicit body. Empty means the literal "body" key followed by the
	// transport's registered kinds in lexical order.
	bodyPrecedence []string
}

// build maps caller inputs onto an outbound request for one route. It
// returns exactly one of: a ready-to-send request, a synthetic
// validation-failure transaction (the transport is never touched on that
// path), or an internal error.
func (b *requestBuilder) build(baseURL *url.URL, route oasspec.Route, params, content map[string]interface{}) (*Request, *Transaction, error) {
	u := *baseURL
	u.Path = joinPath(baseURL.Path, expandPath(route.PathTemplate, params))

	query := make(url.Values)
	header := make(http.Header)
	form := map[string]interface{}{}
	exists := map[oasspec.ParamLocation]map[string]bool{
		oasspec.InQuery:    {},
		oasspec.InHeader:   {},
		oasspec.InFormData: {},
	}
	var body interface{}
	bodySet := false
	bodyKind := ""

	for _, p := range route.Parameters {
		switch p.In {
		case oasspec.InQuery:
			if vals := asSlice(p.Name, params); len(vals) > 0 {
				query[p.Name] = encodeCollection(vals, p)
				exists[oasspec.InQuery][p.Name] = true
			}
		case oasspec.InHeader:
			// Headers keep one value per element; collection formats do not
			// apply beyond the array-or-scalar decision.
			if vals := asSlice(p.Name, params); len(vals) > 0 {
				header[http.CanonicalHeaderKey(p.Name)] = stringifyAll(vals)
				exists[oasspec.InHeader][p.Name] = true
			}
		case oasspec.InFormData:
			// Existence is judged on the array form but the bucket stores
			// the raw caller value.
			if vals := asSlice(p.Name, params); len(vals) > 0 {
				form[p.Name] = params[p.Name]
				exists[oasspec.InFormData][p.Name] = true
			}
		case oasspec.InBody:
			if v, ok := params[p.Name]; ok {
				body, bodySet = v, true
				continue
			}
			for _, kind := range b.contentScanOrder() {
				if v, ok := content[kind]; ok {
					body, bodySet = v, true
					if kind != ContentKindBody {
						bodyKind = kind
					}
					// Write back so the validator sees the parameter as
					// supplied.
					params[p.Name] = v
					break
				}
			}
		}
	}
	u.RawQuery = query.Encode()

	fromParams := func(name string) (interface{}, bool) {
		v, ok := params[name]
		return v, ok
	}
	fromLocation := func(loc oasspec.ParamLocation) oasspec.ParamAccessor {
		return func(name string) (interface{}, bool) {
			return params[name], exists[loc][name]
		}
	}
	errs := b.schema.ValidateRequest(route, oasspec.RequestAccessors{
		oasspec.InPath:     fromParams,
		oasspec.InBody:     fromParams,
		oasspec.InQuery:    fromLocation(oasspec.InQuery),
		oasspec.InHeader:   fromLocation(oasspec.InHeader),
		oasspec.InFormData: fromLocation(oasspec.InFormData),
	})
	if len(errs) > 0 {
		return nil, validationFailure(route, &u, errs), nil
	}

	req := &Request{
		Method:      route.Method,
		URL:         &u,
		Header:      header,
		Body:        body,
		BodySet:     bodySet,
		Form:        form,
		ContentKind: bodyKind,
		OperationID: route.OperationID,
		Upgrade:     route.Upgrade,
		InstanceID:  uuid.NewUUID(),
	}
	if err := b.transport.Assemble(req); err != nil {
		return nil, nil, werror.Wrap(err, "failed to assemble request",
			werror.UnsafeParam("operation", route.OperationID))
	}
	if b.hook != nil {
		b.hook(req)
	}
	return req, nil, nil
}

// contentScanOrder is the documented precedence for resolving an implicit
// body from registered content kinds: the literal "body" key first, then
// the remaining kinds lexically unless an explicit precedence was
// configured.
func (b *requestBuilder) contentScanOrder() []string {
	order := []string{ContentKindBody}
	if len(b.bodyPrecedence) > 0 {
		return append(order, b.bodyPrecedence...)
	}
	kinds := b.transport.ContentKinds()
	sort.Strings(kinds)
	for _, kind := range kinds {
		if kind != ContentKindBody {
			order = append(order, kind)
		}
	}
	return order
}

// validationFailure synthesizes the structured 400 transaction returned
// when validation rejects a call before dispatch.
func validationFailure(route oasspec.Route, u *url.URL, errs []string) *Transaction {
	body, _ := codecs.JSON.Marshal(map[string][]string{"errors": errs})
	return &Transaction{
		Request: &Request{
			Method:      route.Method,
			URL:         u,
			OperationID: route.OperationID,
			InstanceID:  uuid.NewUUID(),
		},
		Response: Response{
			Code:   http.StatusBadRequest,
			Header: http.Header{"Content-Type": []string{"application/json"}},
			Body:   body,
		},
		Err: &TransactionError{Message: "Invalid input", Code: http.StatusBadRequest},
	}
}

var pathParamPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

// expandPath substitutes every {name} placeholder from params (empty string
// when absent) and drops the resulting empty segments.
func expandPath(template string, params map[string]interface{}) string {
	expanded := pathParamPattern.ReplaceAllStringFunc(template, func(m string) string {
		v, ok := params[m[1:len(m)-1]]
		if !ok {
			return ""
		}
		return stringify(v)
	})
	return strings.Join(splitSegments(expanded), "/")
}

func joinPath(basePath, opPath string) string {
	segments := append(splitSegments(basePath), splitSegments(opPath)...)
	return "/" + strings.Join(segments, "/")
}

func splitSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
