// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer StateLogger with contextual
// helpers (component, user, session) and domain specific logging helpers for
// sweeps and snapshot writes.
package logging
