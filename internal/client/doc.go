// Package client is the transport layer between the dashboard and a
// chanmesh node. It executes unary binary-RPC calls over plain HTTP,
// tolerates the node's intermittent omission of status metadata through a
// tiered fallback decoder, fans reads out across configured networks, and
// maintains long-lived server-push event streams with fixed-delay
// reconnection.
//
// The call executor is the single point that classifies failures into the
// EncodingError / TransportError / RemoteError / DecodeError taxonomy; the
// wire and frame packages raise raw errors and never classify.
package client
