/*
Package escrow implements a multi-party, multi-asset conditional escrow.

N participants each owe a fixed quantity of a fixed asset into a vault
that only the escrow record itself controls. No counter-asset is released
until every participant has satisfied their obligation, at which point
settlement pays each beneficiary out of the vault holding the asset they
are owed.

Record and vault addresses are derived, never chosen: the record address
is a pure function of the creator supplied base seed, and each vault
address is a pure function of (record address, asset). Any observer can
recompute both without a lookup table, and neither can collide with an
address somebody holds a private key for.

A deposit is accepted only when it matches the recorded obligation
exactly. Wrong asset, wrong amount, wrong destination, wrong source and
wrong authority are each rejected with their own error code, so a client
can tell "you already paid" apart from "wrong amount".
*/
package escrow
