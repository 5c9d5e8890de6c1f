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

// ContentKindBody is the literal content key consulted first when a body
// parameter is not supplied directly.
const ContentKindBody = "body"

// CallArg configures one operation call.
type CallArg interface {
	applyCall(*callConfig) error
}

type callArgFunc func(*callConfig) error

func (f callArgFunc) applyCall(c *callConfig) error {
	return f(c)
}

type callConfig struct {
	params   map[string]interface{}
	content  map[string]interface{}
	callback func(*Transaction)
}

func newCallConfig(args []CallArg) (*callConfig, error) {
	cfg := &callConfig{
		params:  map[string]interface{}{},
		content: map[string]interface{}{},
	}
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if err := arg.applyCall(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithParams merges a map of declared-parameter values into the call.
func WithParams(params map[string]interface{}) CallArg {
	return callArgFunc(func(c *callConfig) error {
		for k, v := range params {
			c.params[k] = v
		}
		return nil
	})
}

// WithParam sets one declared-parameter value.
func WithParam(name string, value interface{}) CallArg {
	return callArgFunc(func(c *callConfig) error {
		c.params[name] = value
		return nil
	})
}

// WithContent supplies a content entry under a transport-registered content
// kind, e.g. "body", "form" or "protobuf".
func WithContent(kind string, value interface{}) CallArg {
	return callArgFunc(func(c *callConfig) error {
		c.content[kind] = value
		return nil
	})
}

// WithBody supplies the request body content directly.
func WithBody(value interface{}) CallArg {
	return WithContent(ContentKindBody, value)
}

// WithCallback switches Call to the asynchronous callback convention: the
// call returns immediately and fn is invoked with the completed transaction.
// Validation failures are delivered through fn as well, never inline, so
// completion is always asynchronous relative to the call site.
func WithCallback(fn func(*Transaction)) CallArg {
	return callArgFunc(func(c *callConfig) error {
		c.callback = fn
		return nil
	})
}
