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
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/palantir/pkg/safejson"
	werror "github.com/palantir/witchcraft-go-error"
	"gopkg.in/yaml.v2"
)

// routeMethods is the set of path item keys that declare an operation, in
// emission order.
var routeMethods = []string{"get", "put", "post", "delete", "options", "head", "patch"}

// DocumentProvider is the default Provider. It accepts a local path, an
// http(s) URL, inline JSON or YAML text, raw bytes, or an already-parsed
// document, and performs a structural validation pass over the result.
type DocumentProvider struct {
	// HTTPClient fetches URL sources. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewDocumentProvider returns a provider ready for use.
func NewDocumentProvider() *DocumentProvider {
	return &DocumentProvider{}
}

func (p *DocumentProvider) Resolve(source interface{}, coerce CoerceOptions) (Schema, error) {
	raw, err := p.load(source)
	if err != nil {
		return nil, err
	}
	doc := &document{raw: raw, coerce: coerce}
	doc.compile()
	return doc, nil
}

func (p *DocumentProvider) load(source interface{}) (map[string]interface{}, error) {
	switch src := source.(type) {
	case map[string]interface{}:
		return src, nil
	case []byte:
		return parseDocument(src)
	case string:
		data, err := p.read(src)
		if err != nil {
			return nil, err
		}
		return parseDocument(data)
	default:
		return nil, werror.Error("unsupported specification source",
			werror.SafeParam("sourceType", fmt.Sprintf("%T", source)))
	}
}

func (p *DocumentProvider) read(src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		client := p.HTTPClient
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(src)
		if err != nil {
			return nil, werror.Wrap(err, "failed to fetch specification")
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, werror.Error("failed to fetch specification",
				werror.SafeParam("statusCode", resp.StatusCode))
		}
		return io.ReadAll(resp.Body)
	case looksLikeDocument(src):
		return []byte(src), nil
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, werror.Wrap(err, "failed to read specification file")
		}
		return data, nil
	}
}

// looksLikeDocument distinguishes inline specification text from a file
// path: anything starting with a JSON object or containing a newline is
// treated as inline content.
func looksLikeDocument(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "{") || strings.ContainsRune(s, '\n')
}

func parseDocument(data []byte) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var doc map[string]interface{}
		if err := safejson.Unmarshal(data, &doc); err != nil {
			return nil, werror.Wrap(err, "failed to parse JSON specification")
		}
		return doc, nil
	}
	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, werror.Wrap(err, "failed to parse YAML specification")
	}
	normalized, ok := normalizeYAML(doc).(map[string]interface{})
	if !ok {
		return nil, werror.Error("specification document is not an object")
	}
	return normalized, nil
}

// normalizeYAML rewrites yaml.v2's map[interface{}]interface{} trees into
// the map[string]interface{} shape the rest of the package consumes.
func normalizeYAML(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		for i, val := range vv {
			vv[i] = normalizeYAML(val)
		}
		return vv
	default:
		return v
	}
}

// document is the default Schema implementation.
type document struct {
	raw    map[string]interface{}
	coerce CoerceOptions

	errs    []string
	routes  []Route
	isAPI   bool
	baseURL string
}

func (d *document) Errors() []string {
	return d.errs
}

func (d *document) Routes() ([]Route, bool) {
	return d.routes, d.isAPI
}

func (d *document) BaseURL() string {
	return d.baseURL
}

// compile performs the structural validation pass and extracts the route
// table. Every problem found is recorded; nothing short-circuits, so
// callers see the full error list at once.
func (d *document) compile() {
	_, v2 := d.raw["swagger"]
	_, v3 := d.raw["openapi"]
	if !v2 && !v3 {
		d.errs = append(d.errs, "document declares neither a swagger nor an openapi version")
		return
	}
	if v2 {
		if version, _ := d.raw["swagger"].(string); version != "2.0" {
			d.errs = append(d.errs, fmt.Sprintf("unsupported swagger version %q", d.raw["swagger"]))
		}
	}
	d.baseURL = documentBaseURL(d.raw, v2)

	rawPaths, ok := d.raw["paths"]
	if !ok {
		// A valid schema with no route table; not callable but not an error.
		return
	}
	paths, ok := rawPaths.(map[string]interface{})
	if !ok {
		d.errs = append(d.errs, "paths is not an object")
		return
	}
	d.isAPI = true

	seen := map[string]string{}
	for _, path := range sortedKeys(paths) {
		item, ok := paths[path].(map[string]interface{})
		if !ok {
			d.errs = append(d.errs, fmt.Sprintf("path item %q is not an object", path))
			continue
		}
		shared := parseParameters(item["parameters"], v2)
		for _, method := range routeMethods {
			op, ok := item[method].(map[string]interface{})
			if !ok {
				continue
			}
			route := Route{
				Method:       strings.ToUpper(method),
				PathTemplate: path,
				Parameters:   append(append([]Parameter{}, shared...), parseParameters(op["parameters"], v2)...),
			}
			route.OperationID, _ = op["operationId"].(string)
			route.Upgrade, _ = op["x-upgrade"].(bool)
			if !v2 {
				if body, ok := parseRequestBody(op["requestBody"]); ok {
					route.Parameters = append(route.Parameters, body)
				}
			}
			if route.OperationID != "" {
				if prior, dup := seen[route.OperationID]; dup {
					d.errs = append(d.errs, fmt.Sprintf("duplicate operationId %q (%s and %s %s)",
						route.OperationID, prior, route.Method, path))
				}
				seen[route.OperationID] = route.Method + " " + path
			}
			d.routes = append(d.routes, route)
		}
	}
}

func documentBaseURL(raw map[string]interface{}, v2 bool) string {
	if v2 {
		host, _ := raw["host"].(string)
		if host == "" {
			return ""
		}
		scheme := "https"
		if schemes, _ := raw["schemes"].([]interface{}); len(schemes) > 0 {
			if s, _ := schemes[0].(string); s != "" {
				scheme = s
			}
		}
		basePath, _ := raw["basePath"].(string)
		return scheme + "://" + host + basePath
	}
	if servers, _ := raw["servers"].([]interface{}); len(servers) > 0 {
		if server, _ := servers[0].(map[string]interface{}); server != nil {
			u, _ := server["url"].(string)
			return u
		}
	}
	return ""
}

func parseParameters(raw interface{}, v2 bool) []Parameter {
	list, _ := raw.([]interface{})
	params := make([]Parameter, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		p := Parameter{}
		p.Name, _ = obj["name"].(string)
		if in, _ := obj["in"].(string); in != "" {
			p.In = ParamLocation(in)
		}
		p.Required, _ = obj["required"].(bool)
		p.CollectionFormat, _ = obj["collectionFormat"].(string)
		p.Type, _ = obj["type"].(string)
		if p.Type == "" {
			// v3 parameters and v2 body parameters carry a schema object.
			if schema, _ := obj["schema"].(map[string]interface{}); schema != nil {
				p.Type, _ = schema["type"].(string)
			}
		}
		params = append(params, p)
	}
	return params
}

// parseRequestBody synthesizes the v2-style body parameter from a v3
// requestBody object so the rest of the runtime sees one parameter model.
func parseRequestBody(raw interface{}) (Parameter, bool) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return Parameter{}, false
	}
	required, _ := obj["required"].(bool)
	return Parameter{Name: "body", In: InBody, Required: required}, true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
