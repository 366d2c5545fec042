// Package crud generates request handlers for the five canonical resource
// operations (detail, create, update, delete and list) from a single
// Implementation that supplies the domain-specific behavior.
//
// Every generated handler runs a fixed pipeline: option resolution, an
// optional not-found-checked fetch of the existing entity, context
// construction, optional data processing, authorization, the operation itself,
// and postprocessing. Steps run strictly in order, and any failure is returned
// to the caller unmodified.
//
// Handlers share no mutable state between calls. Each invocation allocates its
// own Context, so handlers can be called concurrently.
package crud
