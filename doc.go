// Package keygate implements the token lifecycle for an HTTP identity
// service: signed access and refresh tokens, a single-session-per-user
// refresh slot persisted on the user record, and the signup, login, refresh,
// and logout transitions over it. HTTP gates for access tokens and roles
// live in the middleware subpackages and in guard.go; the server binary in
// cmd/server wires everything against SQLite via bun.
package keygate
