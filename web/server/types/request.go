package types

import (
	"net/http"

	"go.hackfix.me/crudkit/authz"
)

// Request defines the interface for HTTP request wrappers.
type Request interface {
	SetHTTPRequest(*http.Request)
	GetHTTPRequest() *http.Request
	GetCaller() *authz.Caller
	SetCaller(*authz.Caller)
}

// BaseRequest provides a base implementation for HTTP requests with caller context.
type BaseRequest struct {
	*http.Request `json:"-"`
	Caller        *authz.Caller `json:"-"`
}

var _ Request = (*BaseRequest)(nil)

// GetHTTPRequest returns the underlying HTTP request.
func (r *BaseRequest) GetHTTPRequest() *http.Request {
	return r.Request
}

// SetHTTPRequest sets the underlying HTTP request.
func (r *BaseRequest) SetHTTPRequest(req *http.Request) {
	r.Request = req
}

// GetCaller returns the authenticated caller of this request.
func (r *BaseRequest) GetCaller() *authz.Caller {
	return r.Caller
}

// SetCaller sets the authenticated caller of this request.
func (r *BaseRequest) SetCaller(c *authz.Caller) {
	r.Caller = c
}
