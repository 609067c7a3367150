// Package config resolves statecore settings from defaults, an optional
// config file and STATECORE_* environment variables, in that order of
// precedence. Store packages never read configuration themselves; the wiring
// layer loads a Config once and passes the relevant pieces down.
package config
