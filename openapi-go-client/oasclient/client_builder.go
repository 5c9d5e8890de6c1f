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

	"github.com/palantir/pkg/refreshable"
	werror "github.com/palantir/witchcraft-go-error"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// appPlaceholderHost addresses requests dispatched into an in-process
// handler; it never resolves on a network.
const appPlaceholderHost = "app.local"

type clientBuilder struct {
	baseURL         string
	app             http.Handler
	coerce          oasspec.CoerceOptions
	provider        oasspec.Provider
	transport       Transport
	transportParams []TransportParam
	hook            RequestHook
	precedence      []string
}

// New compiles the specification source (or reuses its cached descriptor)
// and returns a client ready for use. Defaults are applied before the
// provided params.
func New(source interface{}, params ...ClientParam) (*Client, error) {
	b := &clientBuilder{
		coerce:   oasspec.DefaultCoerce(),
		provider: oasspec.NewDocumentProvider(),
	}
	for _, p := range params {
		if p == nil {
			continue
		}
		if err := p.apply(b); err != nil {
			return nil, err
		}
	}

	descriptor, err := CompileDescriptor(source, b.provider, b.coerce)
	if err != nil {
		return nil, err
	}

	baseURL, err := b.resolveBaseURL(descriptor)
	if err != nil {
		return nil, err
	}

	transport := b.transport
	if transport == nil {
		tparams := b.transportParams
		if b.app != nil {
			tparams = append(tparams, WithAppHandler(b.app))
		}
		if transport, err = NewTransport(tparams...); err != nil {
			return nil, err
		}
	}

	return &Client{
		descriptor: descriptor,
		transport:  transport,
		baseURL:    refreshable.NewDefaultRefreshable(baseURL),
		hook:       b.hook,
		precedence: b.precedence,
	}, nil
}

func (b *clientBuilder) resolveBaseURL(descriptor *Descriptor) (string, error) {
	raw := b.baseURL
	if raw == "" {
		if defaulter, ok := descriptor.schema.(oasspec.BaseURLer); ok {
			raw = defaulter.BaseURL()
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", werror.Wrap(err, "invalid base URL")
	}
	if b.app != nil {
		// In-process dispatch: host, scheme and port from the source URL
		// are irrelevant and dropped.
		u = &url.URL{Scheme: "http", Host: appPlaceholderHost, Path: u.Path}
	}
	return u.String(), nil
}
