package simple

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

func head(magic uint32, addr, count int) []byte {
	var buf [frameLen]byte
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(addr))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(count))
	return buf[:]
}

func TestWriteThenRead(t *testing.T) {
	h := start(t)

	h.client.Write(append(head(MagicWrite, 2, 4), 1, 2, 3, 4))
	req := h.expectRequest(t)
	if req.Addr != 2 || req.Count != 4 || !bytes.Equal(req.Write, []byte{1, 2, 3, 4}) {
		t.Fatalf("req = %+v", req)
	}
	h.replies <- bridge.OK(req, req.Write)

	if got := h.read(t, frameLen); !bytes.Equal(got, head(MagicWrite, 2, 4)) {
		t.Fatalf("write echo = %v", got)
	}

	h.client.Write(head(MagicRead, 2, 4))
	req = h.expectRequest(t)
	if req.Write != nil || req.Count != 4 {
		t.Fatalf("req = %+v", req)
	}
	h.replies <- bridge.OK(req, []byte{1, 2, 3, 4})

	got := h.read(t, frameLen+4)
	if !bytes.Equal(got[:frameLen], head(MagicRead, 2, 4)) {
		t.Fatalf("read echo = %v", got[:frameLen])
	}
	if !bytes.Equal(got[frameLen:], []byte{1, 2, 3, 4}) {
		t.Fatalf("payload = %v", got[frameLen:])
	}
}

func TestErrorReply(t *testing.T) {
	h := start(t)

	h.client.Write(head(MagicRead, 4000, 8))
	req := h.expectRequest(t)
	h.replies <- bridge.Err(req, bridge.CodeAddrRange)

	got := h.read(t, frameLen)
	if !bytes.Equal(got, head(MagicErr, 4000, int(bridge.CodeAddrRange))) {
		t.Fatalf("error frame = %v", got)
	}
}

func TestInvalidMagicDropsFrame(t *testing.T) {
	h := start(t)

	h.client.Write(head(0xDEAD, 0, 0))
	h.client.Write(head(MagicRead, 1, 1))

	req := h.expectRequest(t)
	if req.Addr != 1 {
		t.Fatalf("req = %+v", req)
	}
	if len(h.events) != 0 {
		t.Fatal("invalid frame reached the bridge")
	}
}

// A body larger than one read chunk arrives intact.
func TestWriteBodyAcrossChunks(t *testing.T) {
	h := start(t)

	count := bodyChunk + 3
	body := make([]byte, count)
	body[0], body[count-1] = 0x11, 0x99

	go func() {
		h.client.Write(head(MagicWrite, 0, count))
		h.client.Write(body)
	}()

	req := h.expectRequest(t)
	if len(req.Write) != count {
		t.Fatalf("body length = %d, want %d", len(req.Write), count)
	}
	if req.Write[0] != 0x11 || req.Write[count-1] != 0x99 {
		t.Fatalf("body corners = %#x, %#x", req.Write[0], req.Write[count-1])
	}
}

func TestShortWriteBodyClosesConnection(t *testing.T) {
	h := start(t)

	h.client.Write(append(head(MagicWrite, 0, 4), 1, 2)) // body cut short
	h.client.Close()

	select {
	case ev := <-h.events:
		if ev.Kind != bridge.EventFinished {
			t.Fatalf("event kind = %d", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("connection not torn down")
	}
}
