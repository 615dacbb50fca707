// Package bridge translates between native asynchronous computations
// and a boundary-safe polling protocol: a status scalar, an opaque
// result buffer and an opaque waker handle. A caller holding only the
// protocol surface can drive a computation scheduled on the other
// side without understanding its concurrency primitives, and native
// code can await a protocol-driven computation as if it were local.
package bridge

// Poll status scalars. The encoding is fixed: it is the wire contract
// and must read the same on both sides of the boundary.
const (
	PollPending    uint32 = 0
	PollReadyValue uint32 = 1
	PollReadyError uint32 = 2
)

// Send status scalars.
const (
	SendValue uint32 = 0
	SendError uint32 = 1
)
