package plc

import (
	"bytes"
	"testing"

	"github.com/fieldio/ecatplc/internal/bridge"
	"github.com/rs/zerolog"
)

func drainOnce(t *testing.T, ext []byte, reqs ...bridge.Request) []bridge.Response {
	t.Helper()
	toPLC := make(chan bridge.Request, len(reqs))
	fromPLC := make(chan bridge.Response, len(reqs))
	for _, r := range reqs {
		toPLC <- r
	}
	drain(toPLC, fromPLC, ext, zerolog.Nop())
	var out []bridge.Response
	for {
		select {
		case r := <-fromPLC:
			out = append(out, r)
		default:
			return out
		}
	}
}

func TestDrainReadsUntilEmpty(t *testing.T) {
	ext := []byte{10, 20, 30, 40}
	resps := drainOnce(t, ext,
		bridge.Request{HID: 1, Addr: 0, Count: 2},
		bridge.Request{HID: 1, Addr: 2, Count: 2},
	)
	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	if !bytes.Equal(resps[0].Data, []byte{10, 20}) || !bytes.Equal(resps[1].Data, []byte{30, 40}) {
		t.Fatalf("read data = %v, %v", resps[0].Data, resps[1].Data)
	}
}

func TestDrainOutOfRange(t *testing.T) {
	ext := make([]byte, 4)
	resps := drainOnce(t, ext,
		bridge.Request{HID: 1, Addr: 2, Count: 4},
		bridge.Request{HID: 1, Addr: 0, Count: 1},
	)
	if len(resps) != 2 {
		t.Fatalf("got %d responses, want 2", len(resps))
	}
	if resps[0].Code != bridge.CodeAddrRange {
		t.Fatalf("code = %d, want %d", resps[0].Code, bridge.CodeAddrRange)
	}
	if resps[1].Code != 0 {
		t.Fatalf("in-range read after range error failed with code %d", resps[1].Code)
	}
}

func TestDrainWriteStopsDraining(t *testing.T) {
	ext := make([]byte, 4)
	toPLC := make(chan bridge.Request, 3)
	fromPLC := make(chan bridge.Response, 3)
	toPLC <- bridge.Request{HID: 1, Addr: 0, Count: 2}
	toPLC <- bridge.Request{HID: 2, Addr: 1, Count: 2, Write: []byte{7, 8}}
	toPLC <- bridge.Request{HID: 3, Addr: 0, Count: 4}

	drain(toPLC, fromPLC, ext, zerolog.Nop())

	if n := len(fromPLC); n != 2 {
		t.Fatalf("answered %d requests, want 2", n)
	}
	if n := len(toPLC); n != 1 {
		t.Fatalf("left %d requests queued, want 1", n)
	}
	if !bytes.Equal(ext, []byte{0, 7, 8, 0}) {
		t.Fatalf("ext = %v after write", ext)
	}

	<-fromPLC
	wr := <-fromPLC
	if wr.Code != 0 || !bytes.Equal(wr.Data, []byte{7, 8}) {
		t.Fatalf("write response = %+v", wr)
	}

	// the remaining read is served next tick and sees the written bytes
	drain(toPLC, fromPLC, ext, zerolog.Nop())
	rd := <-fromPLC
	if !bytes.Equal(rd.Data, []byte{0, 7, 8, 0}) {
		t.Fatalf("next-tick read = %v", rd.Data)
	}
}

func TestDrainReadCopiesOut(t *testing.T) {
	ext := []byte{1, 2, 3}
	resps := drainOnce(t, ext, bridge.Request{HID: 1, Addr: 0, Count: 3})
	ext[0] = 99
	if !bytes.Equal(resps[0].Data, []byte{1, 2, 3}) {
		t.Fatalf("response aliases the image: %v", resps[0].Data)
	}
}

func TestDrainExtraRoundTrip(t *testing.T) {
	ext := make([]byte, 2)
	resps := drainOnce(t, ext, bridge.Request{HID: 1, Addr: 0, Count: 1, Extra: "tag"})
	if resps[0].Req.Extra != "tag" {
		t.Fatalf("extra = %v, want tag", resps[0].Req.Extra)
	}
}
