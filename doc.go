/*
Package covault defines the common interfaces that tie together the
framework hosting the conditional escrow modules, as well as
implementations of the simpler primitives.

The root package holds the address space (Condition, Address and the
deterministic Derive registry), the transaction plumbing (Msg, Tx, Handler)
and the storage contracts (KVStore and friends). Modules under x/ build on
these to implement the actual state transitions.
*/
package covault
