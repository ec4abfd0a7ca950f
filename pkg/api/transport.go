package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/madefire/madefire-go/pkg/httpclient"
)

const contentTypeJSON = "application/json"

// Observer receives one notification per completed call. code follows RequestError
// semantics: the HTTP status on success or status failure, 0 or 500 for sentinels.
type Observer interface {
	ObserveRequest(method, path string, code int, elapsed time.Duration)
}

// Transport performs JSON requests against the API host and maps every outcome
// to either a decoded value or a *RequestError.
type Transport struct {
	host     string
	client   httpclient.Client
	log      Logger
	observer Observer
	now      func() time.Time
}

// NewTransport wires a transport for host. log and observer may be nil.
func NewTransport(host string, client httpclient.Client, log Logger, observer Observer) *Transport {
	if client == nil {
		client = httpclient.NewRestyClient(DefaultTimeout)
	}
	return &Transport{
		host:     host,
		client:   client,
		log:      ensureLogger(log),
		observer: observer,
		now:      time.Now,
	}
}

// DefaultTimeout bounds a single call when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Send executes req and decodes a successful JSON body into out (which may be nil).
// A body that is valid JSON but does not fit out is reported as malformed.
func (t *Transport) Send(ctx context.Context, req Request, out any) error {
	raw, status, start, err := t.do(ctx, req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return t.fail(req, start, newMalformedError(fmt.Errorf("decode response: %w", err)))
		}
	}
	t.succeed(req, status, start)
	return nil
}

// SendRaw executes req and returns the raw JSON body of a 2xx response.
func (t *Transport) SendRaw(ctx context.Context, req Request) (json.RawMessage, error) {
	raw, status, start, err := t.do(ctx, req)
	if err != nil {
		return nil, err
	}
	t.succeed(req, status, start)
	return json.RawMessage(append([]byte(nil), raw...)), nil
}

// do performs the call and maps every failure. Failures are observed here;
// successes are observed by the caller once the body has been accepted.
func (t *Transport) do(ctx context.Context, req Request) ([]byte, int, time.Time, error) {
	if t == nil || t.client == nil {
		return nil, 0, time.Time{}, errors.New("api transport is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, time.Time{}, fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	start := t.now()
	resp, err := t.client.Do(ctx, httpclient.Request{
		Method: req.Method,
		URL:    BuildURL(t.host, req.Path),
		Headers: map[string]string{
			"Content-Type": contentTypeJSON,
			"Accept":       contentTypeJSON,
		},
		Body: payload,
	})
	if err != nil {
		return nil, 0, start, t.fail(req, start, newTransportError(err))
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, status, start, t.fail(req, start, newStatusError(status))
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, status, start, t.fail(req, start, newMalformedError(fmt.Errorf("invalid json body (%d bytes)", len(body))))
	}
	return body, status, start, nil
}

func (t *Transport) succeed(req Request, status int, start time.Time) {
	t.observe(req, status, start)
	t.log.DebugObj("api request completed", "api_request", map[string]any{
		"method":     req.Method,
		"path":       req.Path,
		"status":     status,
		"elapsed_ms": t.now().Sub(start).Milliseconds(),
	})
}

func (t *Transport) fail(req Request, start time.Time, reqErr *RequestError) error {
	t.observe(req, reqErr.Code, start)
	fields := map[string]any{
		"method": req.Method,
		"path":   req.Path,
		"kind":   reqErr.Kind.String(),
		"code":   reqErr.Code,
	}
	if reqErr.Err != nil {
		fields["error"] = reqErr.Err.Error()
	}
	t.log.WarnObj("api request failed", "api_request_error", fields)
	return reqErr
}

func (t *Transport) observe(req Request, code int, start time.Time) {
	if t.observer == nil {
		return
	}
	t.observer.ObserveRequest(req.Method, req.Path, code, t.now().Sub(start))
}
