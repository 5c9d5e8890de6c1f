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
	"context"
	"net/url"

	"github.com/palantir/pkg/refreshable"
	werror "github.com/palantir/witchcraft-go-error"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/oasspec"
)

// RequestHook is the optional single-slot observer invoked synchronously
// with the fully-built request immediately before dispatch. It may augment
// or inspect the request; validation has already been finalized by then.
type RequestHook func(*Request)

// Client executes the operations of one compiled specification. Instances
// are cheap; many clients may share one descriptor.
type Client struct {
	descriptor *Descriptor
	transport  Transport
	baseURL    *refreshable.DefaultRefreshable
	hook       RequestHook
	precedence []string
}

// Descriptor returns the client's compiled operation table.
func (c *Client) Descriptor() *Descriptor {
	return c.descriptor
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.Current().(string)
}

// SetBaseURL swaps the base URL all subsequent calls dispatch against.
func (c *Client) SetBaseURL(raw string) error {
	if _, err := url.Parse(raw); err != nil {
		return werror.Wrap(err, "invalid base URL")
	}
	return c.baseURL.Update(raw)
}

// Call invokes an operation by name using the blocking convention, or the
// callback convention when a WithCallback arg is supplied. On the blocking
// path the returned transaction carries validation failures (Err.Code 400)
// and transport failures alike; the error return is reserved for
// structurally unexpected conditions such as an unknown operation name. On
// the callback path Call returns (nil, nil) immediately and the callback
// receives the completed transaction on a separate goroutine, never inline.
func (c *Client) Call(ctx context.Context, operation string, args ...CallArg) (*Transaction, error) {
	entry, ok := c.descriptor.lookup(operation)
	if !ok {
		return nil, errUnknownOperation(operation)
	}
	cfg, err := newCallConfig(args)
	if err != nil {
		return nil, err
	}
	req, failed, err := c.build(entry.route, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.callback != nil {
		go func() {
			if failed != nil {
				cfg.callback(failed)
				return
			}
			cfg.callback(c.transport.Send(ctx, req))
		}()
		return nil, nil
	}

	if failed != nil {
		return failed, nil
	}
	return c.transport.Send(ctx, req), nil
}

// CallP invokes an operation by name using the promise convention. A
// structured validation failure (one carrying a 400 code) resolves the
// promise with its transaction so it stays inspectable like any completed
// exchange; code-less internal failures and unknown operation names reject.
// A protocol-upgrade request whose handshake the transport did not report
// as completed rejects with a handshake failure.
func (c *Client) CallP(ctx context.Context, operation string, args ...CallArg) *Promise {
	entry, ok := c.descriptor.lookup(operation)
	if !ok {
		return rejectedPromise(errUnknownOperation(operation))
	}
	cfg, err := newCallConfig(args)
	if err != nil {
		return rejectedPromise(err)
	}
	p := newPromise()
	go func() {
		req, failed, err := c.build(entry.route, cfg)
		if err != nil {
			p.reject(err)
			return
		}
		if failed != nil {
			if failed.Err != nil && failed.Err.Code != 0 {
				p.resolve(failed)
			} else {
				p.reject(werror.Error("request validation failed without a structured code"))
			}
			return
		}
		txn := c.transport.Send(ctx, req)
		if req.Upgrade && !txn.Handshaken {
			p.reject(errHandshakeFailed(operation))
			return
		}
		p.resolve(txn)
	}()
	return p
}

func (c *Client) build(route oasspec.Route, cfg *callConfig) (*Request, *Transaction, error) {
	base, err := url.Parse(c.BaseURL())
	if err != nil {
		return nil, nil, werror.Wrap(err, "invalid base URL")
	}
	builder := requestBuilder{
		schema:         c.descriptor.schema,
		transport:      c.transport,
		hook:           c.hook,
		bodyPrecedence: c.precedence,
	}
	return builder.build(base, route, cfg.params, cfg.content)
}
