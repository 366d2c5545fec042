// Package context contains the application context passed to CLI commands and
// web handlers. It's separate from the app package to avoid a circular import
// between the app and cli packages.
package context
