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

	werror "github.com/palantir/witchcraft-go-error"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// ClientParam configures New.
type ClientParam interface {
	apply(*clientBuilder) error
}

type clientParamFunc func(*clientBuilder) error

func (f clientParamFunc) apply(b *clientBuilder) error {
	return f(b)
}

// WithBaseURL overrides the specification-derived base URL.
func WithBaseURL(baseURL string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if _, err := url.Parse(baseURL); err != nil {
			return werror.Wrap(err, "invalid base URL")
		}
		b.baseURL = baseURL
		return nil
	})
}

// WithParsedBaseURL overrides the base URL with an already-parsed URL.
func WithParsedBaseURL(baseURL *url.URL) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if baseURL == nil {
			return werror.Error("base URL can not be nil")
		}
		b.baseURL = baseURL.String()
		return nil
	})
}

// WithApp points the client at an in-process handler instead of a network
// address; host, scheme and port are stripped from the base URL.
func WithApp(handler http.Handler) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if handler == nil {
			return werror.Error("app handler can not be nil")
		}
		b.app = handler
		return nil
	})
}

// WithCoerce selects which mismatched primitive kinds validation accepts
// after conversion, as a comma-separated subset of
// "booleans,numbers,strings". The default enables all three.
func WithCoerce(kinds string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		opts, err := oasspec.ParseCoerce(kinds)
		if err != nil {
			return err
		}
		b.coerce = opts
		return nil
	})
}

// WithCoerceOptions is the pre-parsed form of WithCoerce.
func WithCoerceOptions(opts oasspec.CoerceOptions) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.coerce = opts
		return nil
	})
}

// WithSpecProvider replaces the default specification provider.
func WithSpecProvider(provider oasspec.Provider) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if provider == nil {
			return werror.Error("spec provider can not be nil")
		}
		b.provider = provider
		return nil
	})
}

// WithTransport overrides the transport handle entirely. Transport params
// supplied via WithTransportParams are ignored when this is set.
func WithTransport(transport Transport) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		if transport == nil {
			return werror.Error("transport can not be nil")
		}
		b.transport = transport
		return nil
	})
}

// WithServiceName tags the default transport's metrics with the name of the
// service being called. No-op when WithTransport is set.
func WithServiceName(serviceName string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.transportParams = append(b.transportParams, WithTransportServiceName(serviceName))
		return nil
	})
}

// WithTransportParams configures the default transport.
func WithTransportParams(params ...TransportParam) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.transportParams = append(b.transportParams, params...)
		return nil
	})
}

// WithRequestHook registers the single pre-dispatch observer.
func WithRequestHook(hook RequestHook) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.hook = hook
		return nil
	})
}

// WithBodyPrecedence fixes the content-kind scan order used to resolve an
// implicit body, replacing the default lexical order. The literal "body"
// key is always consulted first regardless.
func WithBodyPrecedence(kinds ...string) ClientParam {
	return clientParamFunc(func(b *clientBuilder) error {
		b.precedence = kinds
		return nil
	})
}
