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
)

// Promise is the future returned by the promise calling convention. It
// settles exactly once, with either a completed Transaction or an error.
type Promise struct {
	done chan struct{}
	txn  *Transaction
	err  error
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func rejectedPromise(err error) *Promise {
	p := newPromise()
	p.reject(err)
	return p
}

func (p *Promise) resolve(txn *Transaction) {
	p.txn = txn
	close(p.done)
}

func (p *Promise) reject(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the promise has settled.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or ctx is cancelled.
func (p *Promise) Await(ctx context.Context) (*Transaction, error) {
	select {
	case <-p.done:
		return p.txn, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
