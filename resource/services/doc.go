// Package services implements the service resource: a crud.Implementation
// backed by the SQLite database, with role-based authorization.
package services
