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
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/palantir/pkg/bytesbuffers"
	"github.com/palantir/pkg/metrics"
	"github.com/palantir/pkg/retry"
	"github.com/palantir/pkg/tlsconfig"
	werror "github.com/palantir/witchcraft-go-error"
	"github.com/palantir/witchcraft-go-logging/wlog/svclog/svc1log"
	"github.com/palantir/witchcraft-go-tracing/wtracing"
	"golang.org/x/net/http2"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/codecs"
)

const (
	traceIDHeaderKey     = "X-B3-TraceId"
	metricClientResponse = "client.response"
	metricTagMethod      = "method"
	metricTagOperation   = "operation"
	metricTagFamily      = "family"
	metricTagServiceName = "service-name"

	defaultDialTimeout         = 5 * time.Second
	defaultHTTPTimeout         = 60 * time.Second
	defaultKeepAlive           = 30 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
	defaultMaxIdleConns        = 200
	defaultMaxAttempts         = 3
)

// Transport is the wire collaborator. Assemble finalizes a built request's
// wire form; Send executes it. Retry, timeouts and connection handling are
// transport concerns, never the core's.
type Transport interface {
	// Assemble encodes the request's body-or-form content into wire form.
	// An explicit body wins over form content when both are present.
	Assemble(req *Request) error

	// Send executes the request and blocks until a transaction is
	// available. Transport-level failures are attached to the
	// transaction's error rather than returned separately.
	Send(ctx context.Context, req *Request) *Transaction

	// ContentKinds lists the registered content-kind keys.
	ContentKinds() []string
}

// TransportParam configures NewTransport.
type TransportParam interface {
	applyTransport(*netTransport) error
}

type transportParamFunc func(*netTransport) error

func (f transportParamFunc) applyTransport(t *netTransport) error {
	return f(t)
}

// WithTransportHTTPClient replaces the underlying *http.Client.
func WithTransportHTTPClient(client *http.Client) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		if client == nil {
			return werror.Error("transport http client can not be nil")
		}
		t.client = client
		return nil
	})
}

// WithContentKind registers (or replaces) a content-kind codec.
func WithContentKind(name string, codec codecs.Codec) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		if name == "" || codec == nil {
			return werror.Error("content kind requires a name and a codec")
		}
		t.kinds[name] = codec
		return nil
	})
}

// WithAppHandler points the transport at an in-process http.Handler; no
// network listener is involved.
func WithAppHandler(handler http.Handler) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		clientCopy := *t.client
		clientCopy.Transport = appRoundTripper{handler: handler}
		t.client = &clientCopy
		return nil
	})
}

// WithMaxAttempts bounds connection-error retries. 1 disables retry.
func WithMaxAttempts(attempts int) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		if attempts < 1 {
			return werror.Error("transport max attempts must be at least 1",
				werror.SafeParam("attempts", attempts))
		}
		t.maxAttempts = attempts
		return nil
	})
}

// WithRetryOptions overrides the backoff behavior between send attempts.
func WithRetryOptions(opts ...retry.Option) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		t.retryOpts = opts
		return nil
	})
}

// WithTransportServiceName tags the transport's response metrics with the
// name of the service being called.
func WithTransportServiceName(serviceName string) TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		if _, err := metrics.NewTag(metricTagServiceName, serviceName); err != nil {
			return werror.Wrap(err, "invalid service name metrics tag")
		}
		t.serviceName = serviceName
		return nil
	})
}

// WithDisableTracePropagation stops the transport from forwarding the
// trace ID from the context onto outgoing requests.
func WithDisableTracePropagation() TransportParam {
	return transportParamFunc(func(t *netTransport) error {
		t.disableTracePropagation = true
		return nil
	})
}

// NewTransport returns the default HTTP transport: pooled keep-alive
// connections, client TLS config, HTTP/2, and bounded retry on connection
// errors.
func NewTransport(params ...TransportParam) (Transport, error) {
	t := &netTransport{
		kinds: map[string]codecs.Codec{
			ContentKindBody: codecs.JSON,
			"form":          codecs.FormURLEncoded,
			"binary":        codecs.Binary,
			"protobuf":      codecs.Protobuf,
			"yaml":          codecs.YAML,
		},
		pool:        bytesbuffers.NewSizedPool(8, 1024),
		maxAttempts: defaultMaxAttempts,
	}
	client, err := newDefaultHTTPClient()
	if err != nil {
		return nil, err
	}
	t.client = client
	for _, p := range params {
		if p == nil {
			continue
		}
		if err := p.applyTransport(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func newDefaultHTTPClient() (*http.Client, error) {
	clientTLS, err := tlsconfig.NewClientConfig()
	if err != nil {
		return nil, werror.Wrap(err, "failed to build client TLS config")
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   defaultDialTimeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		MaxIdleConns:        defaultMaxIdleConns,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
		TLSClientConfig:     clientTLS,
	}
	if _, err := http2.ConfigureTransports(transport); err != nil {
		return nil, werror.Wrap(err, "failed to configure transport for http2")
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultHTTPTimeout,
	}, nil
}

type netTransport struct {
	client *http.Client
	kinds  map[string]codecs.Codec
	pool   bytesbuffers.Pool

	serviceName             string
	maxAttempts             int
	retryOpts               []retry.Option
	disableTracePropagation bool
}

func (t *netTransport) ContentKinds() []string {
	kinds := make([]string, 0, len(t.kinds))
	for name := range t.kinds {
		kinds = append(kinds, name)
	}
	return kinds
}

func (t *netTransport) Assemble(req *Request) error {
	switch {
	case req.BodySet:
		kind := req.ContentKind
		if kind == "" {
			kind = ContentKindBody
		}
		codec, ok := t.kinds[kind]
		if !ok {
			return werror.Error("unregistered content kind",
				werror.SafeParam("contentKind", kind))
		}
		data, err := t.encode(codec, req.Body)
		if err != nil {
			return werror.Wrap(err, "failed to encode request body",
				werror.SafeParam("contentKind", kind))
		}
		req.wireBody, req.contentType = data, codec.ContentType()
	case len(req.Form) > 0:
		codec, ok := t.kinds["form"]
		if !ok {
			codec = codecs.FormURLEncoded
		}
		data, err := t.encode(codec, req.Form)
		if err != nil {
			return werror.Wrap(err, "failed to encode form content")
		}
		req.wireBody, req.contentType = data, codec.ContentType()
	}
	if req.contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", req.contentType)
	}
	return nil
}

func (t *netTransport) encode(codec codecs.Codec, v interface{}) ([]byte, error) {
	buf := t.pool.Get()
	defer t.pool.Put(buf)
	if err := codec.Encode(buf, v); err != nil {
		return nil, err
	}
	return append([]byte(nil), bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...), nil
}

func (t *netTransport) Send(ctx context.Context, req *Request) *Transaction {
	txn := &Transaction{Request: req}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), bytes.NewReader(req.wireBody))
	if err != nil {
		txn.Err = &TransactionError{Message: err.Error()}
		return txn
	}
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	if !t.disableTracePropagation {
		if traceID := wtracing.TraceIDFromContext(ctx); traceID != "" {
			httpReq.Header.Set(traceIDHeaderKey, string(traceID))
		}
	}

	start := time.Now()
	resp, err := t.sendWithRetry(ctx, httpReq)
	t.recordMetrics(ctx, req, resp, time.Since(start))

	if err != nil {
		svc1log.FromContext(ctx).Debug("Request failed at transport.",
			svc1log.UnsafeParam("operation", req.OperationID),
			svc1log.Stacktrace(err))
		txn.Err = &TransactionError{Message: err.Error()}
		return txn
	}

	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	txn.Response = Response{Code: resp.StatusCode, Header: resp.Header, Body: body}
	txn.Handshaken = resp.StatusCode == http.StatusSwitchingProtocols
	if readErr != nil {
		txn.Err = &TransactionError{Message: readErr.Error()}
	} else if resp.StatusCode >= http.StatusBadRequest {
		txn.Err = &TransactionError{Message: http.StatusText(resp.StatusCode), Code: resp.StatusCode}
	}
	return txn
}

// sendWithRetry retries connection-level failures only; any received
// response is returned as-is.
func (t *netTransport) sendWithRetry(ctx context.Context, httpReq *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	retrier := retry.Start(ctx, t.retryOpts...)
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		if httpReq.Body != nil && attempt > 0 {
			if httpReq.GetBody != nil {
				if httpReq.Body, err = httpReq.GetBody(); err != nil {
					return nil, err
				}
			}
		}
		resp, err = t.client.Do(httpReq)
		if err == nil {
			return resp, nil
		}
		if !retrier.Next() {
			break
		}
	}
	return nil, err
}

func (t *netTransport) recordMetrics(ctx context.Context, req *Request, resp *http.Response, duration time.Duration) {
	tags := metrics.Tags{
		metrics.MustNewTag(metricTagMethod, req.Method),
		metrics.MustNewTag(metricTagFamily, statusFamily(resp)),
	}
	if tag, err := metrics.NewTag(metricTagOperation, req.OperationID); err == nil {
		tags = append(tags, tag)
	}
	if t.serviceName != "" {
		tags = append(tags, metrics.MustNewTag(metricTagServiceName, t.serviceName))
	}
	metrics.FromContext(ctx).Timer(metricClientResponse, tags...).Update(duration / time.Microsecond)
}

func statusFamily(resp *http.Response) string {
	switch {
	case resp == nil, resp.StatusCode < 100, resp.StatusCode > 599:
		return "other"
	case resp.StatusCode < 200:
		return "1xx"
	case resp.StatusCode < 300:
		return "2xx"
	case resp.StatusCode < 400:
		return "3xx"
	case resp.StatusCode < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// appRoundTripper serves requests straight into an in-process handler.
type appRoundTripper struct {
	handler http.Handler
}

func (rt appRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
