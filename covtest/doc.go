// Package covtest provides mocks and helpers for testing handlers and
// controllers without pulling in a full application setup.
package covtest
