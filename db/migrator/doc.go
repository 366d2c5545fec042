// Package migrator applies database schema migrations.
//
// Migration files are loaded from a filesystem and named
// `{id}-{name}.{up|down}.sql`. Applied migrations are tracked in the
// `_migrations` table, and each one runs in its own transaction.
package migrator
