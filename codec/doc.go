/*
Package codec implements the wire format used to persist models and encode
messages.

The encoding is protobuf compatible: every field is written as a tag
(field number and wire type) followed by a varint or a length-delimited
payload. Each package that persists data documents its schema in a
codec.proto file next to the Go types.

Writers use the Append* helpers to build a buffer field by field. Readers
use a Decoder to walk the fields in order, skipping anything unknown, so
old readers tolerate new fields.
*/
package codec
