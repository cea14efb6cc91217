// Package bridge is the non-blocking access path between the cyclic engine
// and remote clients: a generic byte-range request/response protocol, a TCP
// listener, and a dispatcher multiplexing connection handlers onto one
// channel pair.
package bridge

import "net"

// Error codes carried in Response.Code.
const (
	CodeBadFunction byte = 1
	CodeAddrRange   byte = 2
)

// Request is one byte-range access against the external image. Write is nil
// for reads. Extra is an opaque handler round-trip (wire framing state) that
// comes back untouched on the response.
type Request struct {
	HID   int
	Addr  int
	Count int
	Write []byte
	Extra any
}

// Response answers exactly one Request. Code 0 means success with Data
// holding the result bytes; a non-zero Code is a protocol error.
type Response struct {
	Req  Request
	Data []byte
	Code byte
}

// OK builds a success response echoing the request.
func OK(req Request, data []byte) Response { return Response{Req: req, Data: data} }

// Err builds an error response with the given protocol error code.
func Err(req Request, code byte) Response { return Response{Req: req, Code: code} }

// EventKind discriminates handler events.
type EventKind int

const (
	EventNew EventKind = iota
	EventRequest
	EventFinished
)

// Event is one handler lifecycle or request event consumed by the
// dispatcher. Replies is set for EventNew, Req for EventRequest.
type Event struct {
	Kind    EventKind
	HID     int
	Replies chan Response
	Req     Request
}

// Handler runs the parse loop of one accepted connection. Constructors are
// expected to spawn the independent send loop themselves.
type Handler interface {
	Handle()
}

// NewHandlerFunc builds a protocol handler for one accepted connection.
// The handler sends Events (one EventNew is emitted by the listener before
// the handler starts; the handler emits EventRequest per parsed request and
// exactly one EventFinished at teardown) and consumes its replies channel
// from its send loop.
type NewHandlerFunc func(conn net.Conn, hid int, events chan<- Event, replies <-chan Response) Handler
