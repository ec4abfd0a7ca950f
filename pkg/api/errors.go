package api

import (
	"errors"
	"net/http"
	"strconv"
)

// Kind discriminates how a request failed.
type Kind int

const (
	// KindTransport means no response was obtained (DNS, refused connection, timeout, cancel).
	KindTransport Kind = iota
	// KindStatus means the server answered outside the 2xx range.
	KindStatus
	// KindMalformedResponse means a 2xx answer whose body was not valid JSON.
	KindMalformedResponse
)

const (
	// CodeTransport is the sentinel code reported for transport failures.
	CodeTransport = 0
	// CodeMalformedResponse is the synthetic code reported for unparseable 2xx bodies.
	CodeMalformedResponse = http.StatusInternalServerError
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// RequestError is the single failure type returned by Transport.
// Error() yields the decimal code, e.g. "404".
type RequestError struct {
	Kind Kind
	Code int
	Err  error
}

func (e *RequestError) Error() string {
	return strconv.Itoa(e.Code)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func newTransportError(err error) *RequestError {
	return &RequestError{Kind: KindTransport, Code: CodeTransport, Err: err}
}

func newStatusError(status int) *RequestError {
	return &RequestError{Kind: KindStatus, Code: status}
}

func newMalformedError(err error) *RequestError {
	return &RequestError{Kind: KindMalformedResponse, Code: CodeMalformedResponse, Err: err}
}

// CodeOf extracts the request error code from err, if err wraps a *RequestError.
func CodeOf(err error) (int, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code, true
	}
	return 0, false
}

func kindOf(err error) (Kind, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind, true
	}
	return 0, false
}

func isStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindStatus && reqErr.Code == status
}

// IsBadRequest reports a 400 answer (invalid, missing or exhausted redemption fields).
func IsBadRequest(err error) bool { return isStatus(err, http.StatusBadRequest) }

// IsNotFound reports a 404 answer (unknown, pending, ungenerated or inactive campaign).
func IsNotFound(err error) bool { return isStatus(err, http.StatusNotFound) }

// IsGone reports a 410 answer (expired campaign).
func IsGone(err error) bool { return isStatus(err, http.StatusGone) }

// IsTransport reports a failure where no response was received.
func IsTransport(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransport
}

// IsMalformed reports a 2xx answer whose body could not be parsed.
func IsMalformed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindMalformedResponse
}
