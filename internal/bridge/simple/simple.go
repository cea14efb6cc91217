// Package simple implements the fixed 12-byte little-endian access
// protocol: {magic, addr, count} with READ/WRITE request magics and a raw
// payload following WRITE frames.
package simple

import (
	"encoding/binary"
	"errors"
	"io"
	"net"

	"github.com/fieldio/ecatplc/internal/bridge"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	MagicRead  uint32 = 0x7EAD
	MagicWrite uint32 = 0xF71E
	MagicErr   uint32 = 0xE770

	frameLen  = 12
	bodyChunk = 64 << 10
)

type handler struct {
	conn   net.Conn
	hid    int
	events chan<- bridge.Event
	logger zerolog.Logger
}

// New builds a simple-protocol handler for one accepted connection and
// spawns its send loop. It satisfies bridge.NewHandlerFunc.
func New(conn net.Conn, hid int, events chan<- bridge.Event, replies <-chan bridge.Response) bridge.Handler {
	h := &handler{
		conn:   conn,
		hid:    hid,
		events: events,
		logger: log.With().Str("component", "simple").Str("peer", conn.RemoteAddr().String()).Logger(),
	}
	go h.send(replies)
	return h
}

func (h *handler) Handle() {
	defer func() {
		h.conn.Close()
		h.events <- bridge.Event{Kind: bridge.EventFinished, HID: h.hid}
		h.logger.Info().Msg("connection closed")
	}()
	h.logger.Info().Msg("connection accepted")

	head := make([]byte, frameLen)
	for {
		if _, err := io.ReadFull(h.conn, head); err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Warn().Err(err).Msg("error reading request head")
			}
			return
		}
		magic := binary.LittleEndian.Uint32(head[0:4])
		addr := int(binary.LittleEndian.Uint32(head[4:8]))
		count := int(binary.LittleEndian.Uint32(head[8:12]))

		var req bridge.Request
		switch magic {
		case MagicRead:
			req = bridge.Request{HID: h.hid, Addr: addr, Count: count, Extra: true}
		case MagicWrite:
			body, err := readBody(h.conn, count)
			if err != nil {
				// a short write body leaves the stream unframeable
				h.logger.Warn().Err(err).Msg("error reading request body")
				return
			}
			req = bridge.Request{HID: h.hid, Addr: addr, Count: count, Write: body, Extra: false}
		default:
			h.logger.Warn().Uint32("magic", magic).Msg("invalid magic, frame dropped")
			continue
		}
		h.events <- bridge.Event{Kind: bridge.EventRequest, Req: req}
	}
}

// readBody collects n body bytes in bounded chunks, so a hostile count in
// the header cannot force a large allocation before any data arrives.
func readBody(r io.Reader, n int) ([]byte, error) {
	body := make([]byte, 0, min(n, bodyChunk))
	for len(body) < n {
		chunk := min(n-len(body), bodyChunk)
		at := len(body)
		body = append(body, make([]byte, chunk)...)
		if _, err := io.ReadFull(r, body[at:]); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (h *handler) send(replies <-chan bridge.Response) {
	var buf [frameLen]byte
	for resp := range replies {
		isRead, ok := resp.Req.Extra.(bool)
		if !ok {
			h.logger.Warn().Msg("response without framing state dropped")
			continue
		}
		switch {
		case resp.Code != 0:
			binary.LittleEndian.PutUint32(buf[0:4], MagicErr)
			binary.LittleEndian.PutUint32(buf[4:8], uint32(resp.Req.Addr))
			binary.LittleEndian.PutUint32(buf[8:12], uint32(resp.Code))
		case isRead:
			binary.LittleEndian.PutUint32(buf[0:4], MagicRead)
			binary.LittleEndian.PutUint32(buf[4:8], uint32(resp.Req.Addr))
			binary.LittleEndian.PutUint32(buf[8:12], uint32(resp.Req.Count))
		default:
			binary.LittleEndian.PutUint32(buf[0:4], MagicWrite)
			binary.LittleEndian.PutUint32(buf[4:8], uint32(resp.Req.Addr))
			binary.LittleEndian.PutUint32(buf[8:12], uint32(resp.Req.Count))
		}
		if _, err := h.conn.Write(buf[:]); err != nil {
			h.logger.Warn().Err(err).Msg("write error")
			return
		}
		if resp.Code == 0 && isRead {
			if _, err := h.conn.Write(resp.Data); err != nil {
				h.logger.Warn().Err(err).Msg("write error")
				return
			}
		}
	}
}
