// Package plc is the cyclic execution engine: it turns a compiled
// process-image descriptor into a live bus-master configuration and runs
// the fixed-frequency receive/compute/send loop, draining access-bridge
// requests against the external image between exchanges.
package plc

import (
	"fmt"
	"time"

	"github.com/fieldio/ecatplc/internal/bridge"
	"github.com/fieldio/ecatplc/internal/ecat"
	"github.com/fieldio/ecatplc/internal/image"
	"github.com/rs/zerolog/log"
)

const (
	defaultCycleFreq = 1000

	requestBuffer  = 128
	responseBuffer = 16
)

// Builder assembles a PLC or Simulator from runtime configuration.
type Builder struct {
	name       string
	masterID   uint32
	cycleFreq  uint32
	serverAddr string
	newHandler bridge.NewHandlerFunc
	extern     []byte
	open       ecat.Opener
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:      name,
		cycleFreq: defaultCycleFreq,
		open:      ecat.NoDriver,
	}
}

// MasterID selects the bus master to open.
func (b *Builder) MasterID(id uint32) *Builder {
	b.masterID = id
	return b
}

// CycleFreq sets the exchange loop frequency in Hz.
func (b *Builder) CycleFreq(hz uint32) *Builder {
	if hz > 0 {
		b.cycleFreq = hz
	}
	return b
}

// WithServer starts the access bridge on addr using the given wire-protocol
// handler constructor.
func (b *Builder) WithServer(addr string, newHandler bridge.NewHandlerFunc) *Builder {
	b.serverAddr = addr
	b.newHandler = newHandler
	return b
}

// WithExtern sets the external image default. The engine owns a copy; its
// length is the image size visible to remote clients.
func (b *Builder) WithExtern(def []byte) *Builder {
	b.extern = def
	return b
}

// WithOpener injects the bus master backend (the real driver binding or a
// simulated master).
func (b *Builder) WithOpener(open ecat.Opener) *Builder {
	b.open = open
	return b
}

func (b *Builder) period() time.Duration {
	return time.Duration(uint64(time.Second) / uint64(b.cycleFreq))
}

func (b *Builder) startBridge() (toPLC chan bridge.Request, fromPLC chan bridge.Response, err error) {
	if b.serverAddr == "" {
		return nil, nil, nil
	}
	toPLC = make(chan bridge.Request, requestBuffer)
	fromPLC = make(chan bridge.Response, responseBuffer)
	if _, err := bridge.Serve(b.serverAddr, b.newHandler, toPLC, fromPLC); err != nil {
		return nil, nil, err
	}
	return toPLC, fromPLC, nil
}

// Build brings up the bus: open and reserve the master, configure every
// slave in descriptor order, enforce the layout invariants, upload SDOs,
// confirm presence, then activate. Any error aborts the whole startup with
// no partial activation.
func (b *Builder) Build(desc *image.Descriptor, src image.ConfigSource) (*PLC, error) {
	if desc == nil {
		return nil, ErrNoDescriptor
	}
	toPLC, fromPLC, err := b.startBridge()
	if err != nil {
		return nil, err
	}

	// named placeholders resolve here, at configuration time
	sdos, err := desc.SdoConfigs(src)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("component", "plc").Str("name", b.name).Logger()

	master, err := b.open(b.masterID, ecat.ReadWrite)
	if err != nil {
		return nil, fmt.Errorf("open master %d: %w", b.masterID, err)
	}
	if err := master.Reserve(); err != nil {
		return nil, fmt.Errorf("reserve master: %w", err)
	}
	domain, err := master.CreateDomain()
	if err != nil {
		return nil, fmt.Errorf("create domain: %w", err)
	}
	logger.Debug().Msg("bus master opened")

	for i, dev := range desc.Devices {
		if err := configureSlave(master, domain, i, desc.DeviceOffset(i), dev, sdos[i]); err != nil {
			return nil, err
		}
	}
	logger.Info().Int("slaves", desc.SlaveCount()).Msg("slaves configured")

	size, err := master.DomainSize(domain)
	if err != nil {
		return nil, fmt.Errorf("domain size: %w", err)
	}
	if size != desc.ByteSize() {
		return nil, fmt.Errorf("%w: domain reports %d, image declares %d",
			ErrSizeMismatch, size, desc.ByteSize())
	}

	if err := master.SetApplicationTime(time.Now()); err != nil {
		return nil, fmt.Errorf("set application time: %w", err)
	}
	if err := master.Activate(); err != nil {
		return nil, fmt.Errorf("activate master: %w", err)
	}
	logger.Info().Msg("bus master activated")

	return &PLC{
		master:  master,
		domain:  domain,
		desc:    desc,
		period:  b.period(),
		toPLC:   toPLC,
		fromPLC: fromPLC,
		ext:     append([]byte(nil), b.extern...),
		stop:    make(chan struct{}),
		logger:  logger,
	}, nil
}

// configureSlave runs the per-device bring-up at one bus position. Every
// registered entry must land at base (the device's accumulated image
// offset) plus its declared local offset, and the first one must be
// byte-aligned.
func configureSlave(master ecat.Master, domain ecat.DomainIdx, i, base int, dev image.Device, sdos []image.SdoConfig) error {
	cfg, err := master.ConfigureSlave(uint16(i), dev.Identity)
	if err != nil {
		return fmt.Errorf("configure slave %d (%s): %w", i, dev.Name, err)
	}
	for _, sp := range dev.Sync {
		if err := cfg.ConfigSyncManagerPdos(sp.SM, sp.Pdos); err != nil {
			return fmt.Errorf("slave %d (%s) sync manager %d: %w", i, dev.Name, sp.SM.Index, err)
		}
	}

	for j, reg := range dev.Regs {
		pos, err := cfg.RegisterPdoEntry(reg.Entry, domain)
		if err != nil {
			return fmt.Errorf("slave %d (%s) entry %d: %w", i, dev.Name, j, err)
		}
		if j == 0 && pos.Bit != 0 {
			return fmt.Errorf("%w: slave %d (%s) at %+v", ErrFirstEntryUnaligned, i, dev.Name, pos)
		}
		expected := image.Offset{Byte: base + reg.At.Byte}
		if pos != expected {
			return fmt.Errorf("%w: slave %d (%s) entry %d: bus reports %+v, declared %+v",
				ErrOffsetMismatch, i, dev.Name, j, pos, expected)
		}
	}

	for _, s := range sdos {
		if err := cfg.AddSdo(s.Index, s.SubIndex, s.Data); err != nil {
			return fmt.Errorf("slave %d (%s) sdo %#04x:%d: %w", i, dev.Name, s.Index, s.SubIndex, err)
		}
	}
	if dev.Watchdog != nil {
		if err := cfg.ConfigWatchdog(dev.Watchdog.Divider, dev.Watchdog.Intervals); err != nil {
			return fmt.Errorf("slave %d (%s) watchdog: %w", i, dev.Name, err)
		}
	}
	if dev.DC != nil {
		if err := cfg.ConfigDC(*dev.DC); err != nil {
			return fmt.Errorf("slave %d (%s) dc: %w", i, dev.Name, err)
		}
	}

	info, err := master.ConfigInfo(cfg.Index())
	if err != nil {
		return fmt.Errorf("slave %d (%s) config info: %w", i, dev.Name, err)
	}
	if info.SlavePosition == nil {
		return fmt.Errorf("%w: slave %d (%s)", ErrSlaveAbsent, i, dev.Name)
	}
	return nil
}

// BuildSimulator assembles the bus-less variant: the same loop shape and
// bridge drain, against the external image only.
func (b *Builder) BuildSimulator() (*Simulator, error) {
	toPLC, fromPLC, err := b.startBridge()
	if err != nil {
		return nil, err
	}
	return &Simulator{
		period:  b.period(),
		toPLC:   toPLC,
		fromPLC: fromPLC,
		ext:     append([]byte(nil), b.extern...),
		stop:    make(chan struct{}),
		logger:  log.With().Str("component", "plc-sim").Str("name", b.name).Logger(),
	}, nil
}
