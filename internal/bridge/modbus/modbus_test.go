package modbus

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/fieldio/ecatplc/internal/bridge"
)

type harness struct {
	client  net.Conn
	events  chan bridge.Event
	replies chan bridge.Response
}

func start(t *testing.T) *harness {
	t.Helper()
	client, server := net.Pipe()
	h := &harness{
		client:  client,
		events:  make(chan bridge.Event, 8),
		replies: make(chan bridge.Response, 8),
	}
	hd := New(server, 1, h.events, h.replies)
	go hd.Handle()
	t.Cleanup(func() { client.Close(); close(h.replies) })
	return h
}

func (h *harness) expectRequest(t *testing.T) bridge.Request {
	t.Helper()
	select {
	case ev := <-h.events:
		if ev.Kind != bridge.EventRequest {
			t.Fatalf("event kind = %d", ev.Kind)
		}
		return ev.Req
	case <-time.After(time.Second):
		t.Fatal("no request event")
		return bridge.Request{}
	}
}

func (h *harness) read(t *testing.T, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	h.client.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := io.ReadFull(h.client, buf); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return buf
}

// frame builds one MBAP frame with the length field derived from the data.
func frame(tid uint16, uid, fc byte, data []byte) []byte {
	buf := make([]byte, 8+len(data))
	binary.BigEndian.PutUint16(buf[0:2], tid)
	binary.BigEndian.PutUint16(buf[4:6], uint16(2+len(data)))
	buf[6] = uid
	buf[7] = fc
	copy(buf[8:], data)
	return buf
}

func regs(vals ...uint16) []byte {
	buf := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(buf[2*i:], v)
	}
	return buf
}

func TestReadRegisters(t *testing.T) {
	h := start(t)
	h.client.Write(frame(0x1234, 0, 3, regs(2, 3))) // addr 2, 3 registers

	req := h.expectRequest(t)
	if req.Addr != 4 || req.Count != 6 || req.Write != nil {
		t.Fatalf("req = %+v", req)
	}
	h.replies <- bridge.OK(req, []byte{1, 2, 3, 4, 5, 6})

	reply := h.read(t, 15)
	if binary.BigEndian.Uint16(reply[0:2]) != 0x1234 {
		t.Fatalf("tid = %#x", reply[0:2])
	}
	if got := binary.BigEndian.Uint16(reply[4:6]); got != 9 {
		t.Fatalf("length field = %d, want 9", got)
	}
	if reply[7] != 3 || reply[8] != 6 {
		t.Fatalf("fc/count = %d/%d", reply[7], reply[8])
	}
	if !bytes.Equal(reply[9:], []byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("data = %v", reply[9:])
	}
}

func TestWriteSingleRegister(t *testing.T) {
	h := start(t)
	h.client.Write(frame(7, 0, 6, regs(1, 0xBEEF)))

	req := h.expectRequest(t)
	if req.Addr != 2 || req.Count != 2 || !bytes.Equal(req.Write, []byte{0xBE, 0xEF}) {
		t.Fatalf("req = %+v", req)
	}
	h.replies <- bridge.OK(req, req.Write)

	reply := h.read(t, 12)
	if got := binary.BigEndian.Uint16(reply[4:6]); got != 6 {
		t.Fatalf("length field = %d, want 6", got)
	}
	if binary.BigEndian.Uint16(reply[8:10]) != 1 {
		t.Fatalf("register addr = %v", reply[8:10])
	}
	if binary.BigEndian.Uint16(reply[10:12]) != 0xBEEF {
		t.Fatalf("value = %v", reply[10:12])
	}
}

func TestWriteMultipleRegisters(t *testing.T) {
	h := start(t)
	data := append(regs(3, 2), 4) // addr 3, 2 registers, byte count 4
	data = append(data, regs(0x0102, 0x0304)...)
	h.client.Write(frame(9, 0, 16, data))

	req := h.expectRequest(t)
	if req.Addr != 6 || req.Count != 4 || !bytes.Equal(req.Write, []byte{1, 2, 3, 4}) {
		t.Fatalf("req = %+v", req)
	}
	h.replies <- bridge.OK(req, req.Write)

	reply := h.read(t, 12)
	if binary.BigEndian.Uint16(reply[8:10]) != 3 {
		t.Fatalf("register addr = %v", reply[8:10])
	}
	if binary.BigEndian.Uint16(reply[10:12]) != 2 {
		t.Fatalf("register count = %v", reply[10:12])
	}
}

func TestByteCountMismatchDropsFrame(t *testing.T) {
	h := start(t)
	data := append(regs(0, 2), 4) // claims 4 bytes
	data = append(data, 1, 2)     // carries only 2
	h.client.Write(frame(1, 0, 16, data))
	h.client.Write(frame(2, 0, 3, regs(0, 1)))

	req := h.expectRequest(t)
	if ex := req.Extra.(extra); ex.tid != 2 {
		t.Fatalf("first forwarded request has tid %d, want the follow-up", ex.tid)
	}
	if len(h.events) != 0 {
		t.Fatal("malformed frame reached the bridge")
	}
}

func TestBadUnitIDDropsFrame(t *testing.T) {
	h := start(t)
	h.client.Write(frame(1, 5, 3, regs(0, 1)))
	h.client.Write(frame(2, 0, 3, regs(0, 1)))

	req := h.expectRequest(t)
	if ex := req.Extra.(extra); ex.tid != 2 {
		t.Fatalf("forwarded request has tid %d", ex.tid)
	}
}

func TestUnknownFunctionCode(t *testing.T) {
	h := start(t)
	h.client.Write(frame(5, 0, 8, []byte{0, 0, 0, 0}))

	reply := h.read(t, 9)
	if reply[7] != 8|0x80 || reply[8] != bridge.CodeBadFunction {
		t.Fatalf("error frame = %v", reply)
	}
	if len(h.events) != 0 {
		t.Fatal("unknown function reached the bridge")
	}
}

// A read past the Modbus quantity ceiling must come back as an error frame
// on the wire; it never reaches the bridge and never tears the send loop
// down.
func TestReadRegisterCountCeiling(t *testing.T) {
	h := start(t)
	h.client.Write(frame(4, 0, 3, regs(0, 200)))

	reply := h.read(t, 9)
	if reply[7] != 3|0x80 || reply[8] != bridge.CodeAddrRange {
		t.Fatalf("error frame = %v", reply)
	}
	if len(h.events) != 0 {
		t.Fatal("oversized read reached the bridge")
	}

	// connection stays usable: a maximum-size read still round-trips
	h.client.Write(frame(5, 0, 3, regs(0, 125)))
	req := h.expectRequest(t)
	if req.Count != 250 {
		t.Fatalf("req count = %d", req.Count)
	}
	h.replies <- bridge.OK(req, make([]byte, 250))
	full := h.read(t, 9+250)
	if full[8] != 250 {
		t.Fatalf("byte count = %d", full[8])
	}
}

func TestBadProtocolIDClosesConnection(t *testing.T) {
	h := start(t)
	bad := frame(1, 0, 3, regs(0, 1))
	bad[2] = 1
	h.client.Write(bad)

	select {
	case ev := <-h.events:
		if ev.Kind != bridge.EventFinished {
			t.Fatalf("event kind = %d", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("connection not torn down")
	}
}

func TestErrorResponseFrame(t *testing.T) {
	h := start(t)
	h.client.Write(frame(3, 0, 3, regs(0xFFFF, 1)))

	req := h.expectRequest(t)
	h.replies <- bridge.Err(req, bridge.CodeAddrRange)

	reply := h.read(t, 9)
	if got := binary.BigEndian.Uint16(reply[4:6]); got != 3 {
		t.Fatalf("length field = %d, want 3", got)
	}
	if reply[7] != 3|0x80 || reply[8] != bridge.CodeAddrRange {
		t.Fatalf("error frame = %v", reply)
	}
}
