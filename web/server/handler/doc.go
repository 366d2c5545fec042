// Package handler assembles HTTP endpoints from reusable pipeline stages:
// authentication, (de)serialization, validation, request and response
// processing, and error mapping. Endpoint functions only receive typed
// requests and return typed responses or errors.
//
// Errors returned by the service handlers are mapped to HTTP status codes, and
// their messages are reduced according to the configured error level before
// they're sent to clients.
package handler
