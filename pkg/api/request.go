package api

import "net/http"

const apiPrefix = "/api/"

// Request describes one call against the coupon service.
type Request struct {
	Method string
	Path   string
	// Body is serialized as JSON when non-nil.
	Body any
}

// Get builds a GET request for a resource path.
func Get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

// Post builds a POST request for a resource path carrying body.
func Post(path string, body any) Request {
	return Request{Method: http.MethodPost, Path: path, Body: body}
}

// BuildURL joins the API host and a resource path under the /api/ prefix.
// The host is not validated; a bad host fails later as a transport error.
func BuildURL(host, resourcePath string) string {
	return host + apiPrefix + resourcePath
}
