package bridge

import (
	"net"

	"github.com/rs/zerolog/log"
)

const (
	eventBuffer = 64
	replyBuffer = 16
)

// Serve starts the access bridge on addr: a listener goroutine accepting
// connections and a dispatcher goroutine multiplexing handler events onto
// the engine channel pair. The returned listener can be closed to stop
// accepting; established connections and the engine loop are unaffected.
func Serve(addr string, newHandler NewHandlerFunc, toPLC chan<- Request, fromPLC <-chan Response) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	events := make(chan Event, eventBuffer)
	go listen(ln, newHandler, events)
	go dispatch(events, toPLC, fromPLC)
	return ln, nil
}

func listen(ln net.Listener, newHandler NewHandlerFunc, events chan<- Event) {
	logger := log.With().Str("component", "bridge").Logger()
	logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	hid := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Info().Err(err).Msg("listener closed")
			return
		}
		hid++
		replies := make(chan Response, replyBuffer)
		events <- Event{Kind: EventNew, HID: hid, Replies: replies}
		h := newHandler(conn, hid, events, replies)
		go h.Handle()
	}
}

// dispatch relies on the engine returning exactly one response per request,
// in submission order. It forwards a request and waits for that single
// response before touching the next event, which keeps the per-connection
// request/response pairing 1:1.
func dispatch(events <-chan Event, toPLC chan<- Request, fromPLC <-chan Response) {
	logger := log.With().Str("component", "dispatcher").Logger()
	handlers := map[int]chan Response{}

	for ev := range events {
		switch ev.Kind {
		case EventNew:
			handlers[ev.HID] = ev.Replies
		case EventFinished:
			if ch, ok := handlers[ev.HID]; ok {
				// wakes the handler's send loop; any request from this
				// handler was already answered, events are ordered
				close(ch)
				delete(handlers, ev.HID)
			}
		case EventRequest:
			toPLC <- ev.Req
			resp, ok := <-fromPLC
			if !ok {
				logger.Warn().Msg("engine channel closed, dispatcher exiting")
				return
			}
			ch, ok := handlers[resp.Req.HID]
			if !ok {
				logger.Warn().Int("hid", resp.Req.HID).Msg("response for unknown handler dropped")
				continue
			}
			select {
			case ch <- resp:
			default:
				logger.Warn().Int("hid", resp.Req.HID).Msg("handler reply queue full, response dropped")
			}
		}
	}
}
