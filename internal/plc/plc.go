package plc

import (
	"sync"
	"time"

	"github.com/fieldio/ecatplc/internal/bridge"
	"github.com/fieldio/ecatplc/internal/ecat"
	"github.com/fieldio/ecatplc/internal/image"
	"github.com/fieldio/ecatplc/internal/observability"
	"github.com/rs/zerolog"
)

// CycleFunc is the user control logic, invoked once per tick with the typed
// view of the bus-mapped image and the external image. Both are only valid
// for the duration of the call.
type CycleFunc func(img image.View, ext []byte)

// PLC drives the steady-state exchange loop against an activated master.
// The engine goroutine is the sole owner of the master and of both images;
// all external access goes through the bridge channels.
type PLC struct {
	master  ecat.Master
	domain  ecat.DomainIdx
	desc    *image.Descriptor
	period  time.Duration
	toPLC   <-chan bridge.Request
	fromPLC chan<- bridge.Response
	ext     []byte
	stop    chan struct{}
	stopped sync.Once
	logger  zerolog.Logger
}

// Stop terminates the loop after the current tick. Production deployments
// normally run until process exit and never call it.
func (p *PLC) Stop() {
	p.stopped.Do(func() { close(p.stop) })
}

// Extern exposes the engine-owned external image. Only for inspection after
// the loop has stopped; the engine goroutine owns it while running.
func (p *PLC) Extern() []byte { return p.ext }

// Run executes the tick loop until Stop. A failed bus step abandons the
// tick and the loop proceeds; transient bus errors never terminate the
// process. Tick boundaries are absolute: the anchor advances by the fixed
// period and a late tick starts immediately with no catch-up.
func (p *PLC) Run(cycle CycleFunc) {
	errLog := p.logger.Sample(&zerolog.BurstSampler{Burst: 1, Period: time.Second})
	cycleStart := time.Now()

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		started := time.Now()
		if err := p.singleCycle(cycle); err != nil {
			observability.RecordCycleError()
			errLog.Warn().Err(err).Msg("error in cycle, tick abandoned")
		}
		observability.ObserveCycle(time.Since(started))

		drain(p.toPLC, p.fromPLC, p.ext, p.logger)

		cycleStart = cycleStart.Add(p.period)
		if d := time.Until(cycleStart); d > 0 {
			time.Sleep(d)
		} else {
			observability.RecordOverrun()
		}
	}
}

func (p *PLC) singleCycle(cycle CycleFunc) error {
	if err := p.master.Receive(); err != nil {
		return err
	}
	if err := p.master.ProcessDomain(p.domain); err != nil {
		return err
	}
	data, err := p.master.DomainData(p.domain)
	if err != nil {
		return err
	}
	img, err := p.desc.View(data)
	if err != nil {
		return err
	}
	cycle(img, p.ext)
	if err := p.master.QueueDomain(p.domain); err != nil {
		return err
	}
	return p.master.Send()
}

// Simulator runs the same loop shape without a bus binding, for testing
// control logic off hardware.
type Simulator struct {
	period  time.Duration
	toPLC   <-chan bridge.Request
	fromPLC chan<- bridge.Response
	ext     []byte
	stop    chan struct{}
	stopped sync.Once
	logger  zerolog.Logger
}

func (s *Simulator) Stop() {
	s.stopped.Do(func() { close(s.stop) })
}

func (s *Simulator) Extern() []byte { return s.ext }

// Run executes the simulated tick loop: user logic against the external
// image, then the bridge drain, then the absolute-boundary sleep.
func (s *Simulator) Run(cycle func(ext []byte)) {
	cycleStart := time.Now()
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		cycle(s.ext)
		drain(s.toPLC, s.fromPLC, s.ext, s.logger)

		cycleStart = cycleStart.Add(s.period)
		if d := time.Until(cycleStart); d > 0 {
			time.Sleep(d)
		} else {
			observability.RecordOverrun()
		}
	}
}
