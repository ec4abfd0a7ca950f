package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/madefire/madefire-go/pkg/httpclient"
)

// fakeResponse implements httpclient.Response.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }

// fakeHTTPClient records the last request and returns a canned outcome.
type fakeHTTPClient struct {
	resp fakeResponse
	err  error
	last httpclient.Request
}

func (f *fakeHTTPClient) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// recordingObserver captures observed calls.
type recordingObserver struct {
	mu    sync.Mutex
	codes []int
	paths []string
}

func (r *recordingObserver) ObserveRequest(_ string, path string, code int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
	r.paths = append(r.paths, path)
}

func TestTransportSendDecodesSuccess(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: http.StatusOK, body: []byte(`{"slug":"x","active":true}`)}}
	obs := &recordingObserver{}
	tr := NewTransport("http://host", client, nil, obs)

	var out struct {
		Slug   string `json:"slug"`
		Active bool   `json:"active"`
	}
	if err := tr.Send(context.Background(), Get("coupon/campaign/x/"), &out); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if out.Slug != "x" || !out.Active {
		t.Fatalf("unexpected decode %#v", out)
	}
	if client.last.URL != "http://host/api/coupon/campaign/x/" {
		t.Fatalf("URL = %s", client.last.URL)
	}
	if client.last.Method != http.MethodGet {
		t.Fatalf("Method = %s", client.last.Method)
	}
	if client.last.Body != nil {
		t.Fatalf("GET must not carry a body, got %q", client.last.Body)
	}
	if got := client.last.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if len(obs.codes) != 1 || obs.codes[0] != http.StatusOK {
		t.Fatalf("observer codes = %v", obs.codes)
	}
}

func TestTransportSendSerializesBody(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: http.StatusCreated, body: []byte(`{}`)}}
	tr := NewTransport("http://host", client, nil, nil)

	if err := tr.Send(context.Background(), Post("p/", map[string]string{"code": "0"}), nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var sent map[string]string
	if err := json.Unmarshal(client.last.Body, &sent); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if sent["code"] != "0" {
		t.Fatalf("unexpected body %v", sent)
	}
	if got := client.last.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestTransportOutcomeMapping(t *testing.T) {
	cases := []struct {
		name     string
		client   *fakeHTTPClient
		wantKind Kind
		wantCode int
	}{
		{"unparseable 2xx", &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: []byte("<html>")}}, KindMalformedResponse, 500},
		{"empty 2xx", &fakeHTTPClient{resp: fakeResponse{statusCode: 204}}, KindMalformedResponse, 500},
		{"bad request", &fakeHTTPClient{resp: fakeResponse{statusCode: 400, body: []byte(`{"detail":"x"}`)}}, KindStatus, 400},
		{"not found", &fakeHTTPClient{resp: fakeResponse{statusCode: 404}}, KindStatus, 404},
		{"gone", &fakeHTTPClient{resp: fakeResponse{statusCode: 410}}, KindStatus, 410},
		{"real 500", &fakeHTTPClient{resp: fakeResponse{statusCode: 500, body: []byte(`{}`)}}, KindStatus, 500},
		{"redirect", &fakeHTTPClient{resp: fakeResponse{statusCode: 304}}, KindStatus, 304},
		{"no response", &fakeHTTPClient{err: errors.New("connection refused")}, KindTransport, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := &recordingObserver{}
			tr := NewTransport("http://host", tc.client, nil, obs)
			_, err := tr.SendRaw(context.Background(), Get("r/"))

			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %T %v", err, err)
			}
			if reqErr.Kind != tc.wantKind || reqErr.Code != tc.wantCode {
				t.Fatalf("got kind=%s code=%d want kind=%s code=%d", reqErr.Kind, reqErr.Code, tc.wantKind, tc.wantCode)
			}
			if len(obs.codes) != 1 || obs.codes[0] != tc.wantCode {
				t.Fatalf("observer codes = %v", obs.codes)
			}
		})
	}
}

func TestTransportSendShapeMismatchIsMalformed(t *testing.T) {
	client := &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: []byte(`{"active":"yes"}`)}}
	obs := &recordingObserver{}
	tr := NewTransport("http://host", client, nil, obs)

	var out struct {
		Active bool `json:"active"`
	}
	err := tr.Send(context.Background(), Get("r/"), &out)
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if err.Error() != "500" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if len(obs.codes) != 1 || obs.codes[0] != CodeMalformedResponse {
		t.Fatalf("observer codes = %v, want [%d]", obs.codes, CodeMalformedResponse)
	}
}

func TestTransportSendRawCopiesBody(t *testing.T) {
	body := []byte(`{"a":1}`)
	tr := NewTransport("http://host", &fakeHTTPClient{resp: fakeResponse{statusCode: 200, body: body}}, nil, nil)

	raw, err := tr.SendRaw(context.Background(), Get("r/"))
	if err != nil {
		t.Fatalf("SendRaw: %v", err)
	}
	body[1] = 'X'
	if string(raw) != `{"a":1}` {
		t.Fatalf("raw body aliased transport buffer: %s", raw)
	}
}

func TestTransportCancelledContextIsTransportFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTransport("http://127.0.0.1:1", httpclient.NewRestyClient(time.Second), nil, nil)
	_, err := tr.SendRaw(ctx, Get("r/"))
	if !IsTransport(err) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if err.Error() != "0" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestNilTransportReportsNotInitialized(t *testing.T) {
	var tr *Transport
	if _, err := tr.SendRaw(context.Background(), Get("r/")); err == nil {
		t.Fatalf("expected error from nil transport")
	}
}
