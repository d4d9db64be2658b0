// Package wire defines the chanmesh node's binary RPC vocabulary: message
// shapes, the CBOR payload codec, call descriptors, and the static registry
// mapping each descriptor to its typed encode/decode pair.
//
// The registry is configuration, not runtime state. A descriptor with no
// entry is not an error here; the call executor treats it as a signal to use
// the fallback decode path.
package wire
