/*
Package errors implements the error handling used across the framework.

Each module declares root errors via Register during initialization. Code
created during runtime wraps a root error, optionally many levels deep, and
is tested with the root's Is method. Clients receive the registered code of
the root cause, so they can distinguish error kinds without parsing
messages.
*/
package errors
