// Package modbus implements the Modbus-TCP compatible access protocol over
// the bridge: function codes 3/4 (read registers), 6 (write single
// register) and 16 (write multiple registers), addressing the external
// image in 16-bit register units.
package modbus

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
	headerLen  = 8
	maxDataLen = 252 // MBAP length field ceiling for a 260-byte frame
	maxRegs    = 125 // register quantity ceiling for fc 3/4, keeps replies framable
)

// extra carries the per-request framing state the send loop needs to
// re-encode the reply.
type extra struct {
	tid uint16
	fc  byte
}

type handler struct {
	conn   net.Conn
	hid    int
	events chan<- bridge.Event
	logger zerolog.Logger
}

// New builds a Modbus handler for one accepted connection and spawns its
// send loop. It satisfies bridge.NewHandlerFunc.
func New(conn net.Conn, hid int, events chan<- bridge.Event, replies <-chan bridge.Response) bridge.Handler {
	h := &handler{
		conn:   conn,
		hid:    hid,
		events: events,
		logger: log.With().Str("component", "modbus").Str("peer", conn.RemoteAddr().String()).Logger(),
	}
	go h.send(replies)
	return h
}

// Handle runs the parse loop until EOF or an unrecoverable framing error,
// then emits exactly one Finished event.
func (h *handler) Handle() {
	defer func() {
		h.conn.Close()
		h.events <- bridge.Event{Kind: bridge.EventFinished, HID: h.hid}
		h.logger.Info().Msg("connection closed")
	}()
	h.logger.Info().Msg("connection accepted")

	head := make([]byte, headerLen)
	body := make([]byte, maxDataLen-2)
	for {
		if _, err := io.ReadFull(h.conn, head); err != nil {
			if !errors.Is(err, io.EOF) {
				h.logger.Warn().Err(err).Msg("error reading request head")
			}
			return
		}
		if head[2] != 0 || head[3] != 0 {
			h.logger.Warn().Msg("protocol id mismatch")
			return
		}
		tid := binary.BigEndian.Uint16(head[0:2])
		dataLen := int(binary.BigEndian.Uint16(head[4:6]))
		if dataLen < 2 || dataLen > maxDataLen {
			h.logger.Warn().Int("len", dataLen).Msg("unframeable length")
			return
		}
		if _, err := io.ReadFull(h.conn, body[:dataLen-2]); err != nil {
			h.logger.Warn().Err(err).Msg("error reading request body")
			return
		}
		if head[6] != 0 {
			h.logger.Warn().Uint8("unit", head[6]).Msg("invalid unit id, frame dropped")
			continue
		}
		fc := head[7]

		var req bridge.Request
		switch fc {
		case 3, 4: // read holding/input registers
			if dataLen != 6 {
				h.logger.Warn().Uint8("fc", fc).Msg("invalid data length, frame dropped")
				continue
			}
			count := int(binary.BigEndian.Uint16(body[2:4]))
			if count < 1 || count > maxRegs {
				h.logger.Warn().Uint8("fc", fc).Int("regs", count).Msg("register count out of range")
				if err := h.writeErrorFrame(tid, fc, bridge.CodeAddrRange); err != nil {
					h.logger.Warn().Err(err).Msg("error writing error response")
					return
				}
				continue
			}
			req = bridge.Request{
				HID:   h.hid,
				Addr:  2 * int(binary.BigEndian.Uint16(body[0:2])),
				Count: 2 * count,
				Extra: extra{tid: tid, fc: fc},
			}
		case 6: // write single register
			if dataLen != 6 {
				h.logger.Warn().Uint8("fc", fc).Msg("invalid data length, frame dropped")
				continue
			}
			req = bridge.Request{
				HID:   h.hid,
				Addr:  2 * int(binary.BigEndian.Uint16(body[0:2])),
				Count: 2,
				Write: append([]byte(nil), body[2:4]...),
				Extra: extra{tid: tid, fc: fc},
			}
		case 16: // write multiple registers
			if dataLen < 7 {
				h.logger.Warn().Uint8("fc", fc).Msg("insufficient data length, frame dropped")
				continue
			}
			byteCount := int(body[4])
			if dataLen != 7+byteCount {
				h.logger.Warn().Uint8("fc", fc).Int("bytes", byteCount).
					Msg("byte count disagrees with frame length, frame dropped")
				continue
			}
			req = bridge.Request{
				HID:   h.hid,
				Addr:  2 * int(binary.BigEndian.Uint16(body[0:2])),
				Count: byteCount,
				Write: append([]byte(nil), body[5:5+byteCount]...),
				Extra: extra{tid: tid, fc: fc},
			}
		default:
			// answered synchronously, never reaches the bridge
			if err := h.writeErrorFrame(tid, fc, bridge.CodeBadFunction); err != nil {
				h.logger.Warn().Err(err).Msg("error writing error response")
				return
			}
			continue
		}
		h.events <- bridge.Event{Kind: bridge.EventRequest, Req: req}
	}
}

func (h *handler) writeErrorFrame(tid uint16, fc, code byte) error {
	var buf [9]byte
	binary.BigEndian.PutUint16(buf[0:2], tid)
	binary.BigEndian.PutUint16(buf[4:6], 3)
	buf[7] = fc | 0x80
	buf[8] = code
	_, err := h.conn.Write(buf[:])
	return err
}

// send encodes responses independently of the parse loop, so a stalled
// outbound socket cannot block inbound parsing. It exits when the
// dispatcher closes the replies channel or the peer goes away.
func (h *handler) send(replies <-chan bridge.Response) {
	buf := make([]byte, 9+maxDataLen)
	for resp := range replies {
		ex, ok := resp.Req.Extra.(extra)
		if !ok {
			h.logger.Warn().Msg("response without modbus framing state dropped")
			continue
		}
		if need := 9 + len(resp.Data); need > len(buf) {
			buf = make([]byte, need)
		}
		n := encodeResponse(buf, ex, resp)
		if _, err := h.conn.Write(buf[:n]); err != nil {
			h.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
}

func encodeResponse(buf []byte, ex extra, resp bridge.Response) int {
	for i := range buf[:8] {
		buf[i] = 0
	}
	binary.BigEndian.PutUint16(buf[0:2], ex.tid)
	buf[7] = ex.fc

	var total int
	switch {
	case resp.Code != 0:
		buf[7] = ex.fc | 0x80
		buf[8] = resp.Code
		total = 9
	case ex.fc == 3 || ex.fc == 4:
		buf[8] = byte(len(resp.Data))
		copy(buf[9:], resp.Data)
		total = 9 + len(resp.Data)
	case ex.fc == 6:
		binary.BigEndian.PutUint16(buf[8:10], uint16(resp.Req.Addr/2))
		copy(buf[10:12], resp.Data)
		total = 12
	default: // fc 16
		binary.BigEndian.PutUint16(buf[8:10], uint16(resp.Req.Addr/2))
		binary.BigEndian.PutUint16(buf[10:12], uint16(len(resp.Data)/2))
		total = 12
	}
	binary.BigEndian.PutUint16(buf[4:6], uint16(total-6))
	return total
}
