package plc

import (
	"github.com/fieldio/ecatplc/internal/bridge"
	"github.com/fieldio/ecatplc/internal/observability"
	"github.com/rs/zerolog"
)

// drain answers pending bridge requests against the external image without
// ever blocking the engine. Reads are served until the queue is empty; the
// first in-range write is applied and ends the drain for this tick, so the
// next tick's user logic observes the write before further reads are
// served.
func drain(toPLC <-chan bridge.Request, fromPLC chan<- bridge.Response, ext []byte, logger zerolog.Logger) {
	for {
		select {
		case req := <-toPLC:
			resp, wrote := answer(req, ext)
			select {
			case fromPLC <- resp:
			default:
				logger.Warn().Int("hid", req.HID).Msg("could not send back response")
			}
			if wrote {
				return
			}
		default:
			return
		}
	}
}

func answer(req bridge.Request, ext []byte) (resp bridge.Response, wrote bool) {
	if req.Addr+req.Count > len(ext) {
		observability.RecordBridgeRequest("error")
		return bridge.Err(req, bridge.CodeAddrRange), false
	}
	if req.Write != nil {
		copy(ext[req.Addr:req.Addr+req.Count], req.Write)
		observability.RecordBridgeRequest("write")
		return bridge.OK(req, req.Write), true
	}
	observability.RecordBridgeRequest("read")
	data := append([]byte(nil), ext[req.Addr:req.Addr+req.Count]...)
	return bridge.OK(req, data), false
}
