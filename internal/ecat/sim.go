package ecat

import (
	"fmt"
	"time"

	"github.com/fieldio/ecatplc/internal/image"
)

// SimEntry declares one mappable object-dictionary entry of a simulated
// slave and its mapped width.
type SimEntry struct {
	Ref   image.EntryRef
	Bytes int
}

// SimSlave is one simulated slave at its bus position.
type SimSlave struct {
	Identity image.Identity
	Entries  []SimEntry
}

// SimMaster is an in-memory Master. It hands out domain offsets in
// registration order, which matches how the real master packs a domain, and
// exposes fault-injection knobs for bring-up and cycle tests.
type SimMaster struct {
	// fault injection
	Absent      map[uint16]bool // positions reported as not present
	OffsetDelta map[uint16]int  // skew added to offsets reported at a position
	PadSize     int             // extra bytes reported in the domain size
	ExchangeErr error           // returned by Receive when set

	slaves    []SimSlave
	reserved  bool
	activated bool
	appTime   time.Time
	domains   map[DomainIdx]*simDomain
	configs   map[ConfigIdx]*simConfig
	nextCfg   ConfigIdx
}

type simDomain struct {
	size int
	data []byte
}

type simConfig struct {
	master   *SimMaster
	idx      ConfigIdx
	position uint16
	identity image.Identity

	Sync     []image.SyncPdos
	Sdos     []image.SdoConfig
	Watchdog *image.WatchdogConfig
	DC       *image.DCConfig
}

// NewSim builds a simulated master with the given slaves on the bus, in
// position order.
func NewSim(slaves ...SimSlave) *SimMaster {
	return &SimMaster{
		Absent:      map[uint16]bool{},
		OffsetDelta: map[uint16]int{},
		slaves:      slaves,
		domains:     map[DomainIdx]*simDomain{},
		configs:     map[ConfigIdx]*simConfig{},
	}
}

// SimFromDescriptor populates a simulated bus that matches a compiled
// descriptor: one slave per device, entry widths taken from the register
// table.
func SimFromDescriptor(d *image.Descriptor) *SimMaster {
	slaves := make([]SimSlave, 0, d.SlaveCount())
	for _, dev := range d.Devices {
		s := SimSlave{Identity: dev.Identity}
		for _, reg := range dev.Regs {
			s.Entries = append(s.Entries, SimEntry{Ref: reg.Entry, Bytes: reg.Bits / 8})
		}
		slaves = append(slaves, s)
	}
	return NewSim(slaves...)
}

// Opener adapts the simulated master to the Opener signature.
func (m *SimMaster) Opener() Opener {
	return func(uint32, Access) (Master, error) { return m, nil }
}

func (m *SimMaster) Reserve() error {
	m.reserved = true
	return nil
}

func (m *SimMaster) CreateDomain() (DomainIdx, error) {
	idx := DomainIdx(len(m.domains))
	m.domains[idx] = &simDomain{}
	return idx, nil
}

func (m *SimMaster) ConfigureSlave(position uint16, id image.Identity) (SlaveConfig, error) {
	if m.activated {
		return nil, ErrActivated
	}
	cfg := &simConfig{master: m, idx: m.nextCfg, position: position, identity: id}
	m.configs[m.nextCfg] = cfg
	m.nextCfg++
	return cfg, nil
}

func (m *SimMaster) ConfigInfo(idx ConfigIdx) (ConfigInfo, error) {
	cfg, ok := m.configs[idx]
	if !ok {
		return ConfigInfo{}, ErrUnknownConfig
	}
	pos := cfg.position
	if int(pos) >= len(m.slaves) || m.Absent[pos] || m.slaves[pos].Identity != cfg.identity {
		return ConfigInfo{}, nil
	}
	return ConfigInfo{SlavePosition: &pos}, nil
}

func (m *SimMaster) DomainSize(domain DomainIdx) (int, error) {
	d, ok := m.domains[domain]
	if !ok {
		return 0, ErrUnknownDomain
	}
	return d.size + m.PadSize, nil
}

func (m *SimMaster) SetApplicationTime(t time.Time) error {
	m.appTime = t
	return nil
}

func (m *SimMaster) Activate() error {
	if !m.reserved {
		return fmt.Errorf("ecat: activate before reserve")
	}
	m.activated = true
	for _, d := range m.domains {
		d.data = make([]byte, d.size)
	}
	return nil
}

func (m *SimMaster) Receive() error {
	if !m.activated {
		return ErrNotActivated
	}
	return m.ExchangeErr
}

func (m *SimMaster) ProcessDomain(domain DomainIdx) error {
	if _, ok := m.domains[domain]; !ok {
		return ErrUnknownDomain
	}
	return nil
}

func (m *SimMaster) DomainData(domain DomainIdx) ([]byte, error) {
	d, ok := m.domains[domain]
	if !ok {
		return nil, ErrUnknownDomain
	}
	if !m.activated {
		return nil, ErrNotActivated
	}
	return d.data, nil
}

func (m *SimMaster) QueueDomain(domain DomainIdx) error {
	if _, ok := m.domains[domain]; !ok {
		return ErrUnknownDomain
	}
	return nil
}

func (m *SimMaster) Send() error {
	if !m.activated {
		return ErrNotActivated
	}
	return nil
}

// SlaveState exposes what was uploaded to the slave at a position, for
// assertions in bring-up tests.
func (m *SimMaster) SlaveState(position uint16) (sync []image.SyncPdos, sdos []image.SdoConfig, wd *image.WatchdogConfig, dc *image.DCConfig) {
	for _, cfg := range m.configs {
		if cfg.position == position {
			return cfg.Sync, cfg.Sdos, cfg.Watchdog, cfg.DC
		}
	}
	return nil, nil, nil, nil
}

func (c *simConfig) ConfigSyncManagerPdos(sm image.SyncManagerConfig, pdos []image.PdoConfig) error {
	c.Sync = append(c.Sync, image.SyncPdos{SM: sm, Pdos: pdos})
	return nil
}

func (c *simConfig) RegisterPdoEntry(entry image.EntryRef, domain DomainIdx) (image.Offset, error) {
	m := c.master
	d, ok := m.domains[domain]
	if !ok {
		return image.Offset{}, ErrUnknownDomain
	}
	if int(c.position) >= len(m.slaves) {
		return image.Offset{}, fmt.Errorf("%w: no slave at position %d", ErrUnknownEntry, c.position)
	}
	for _, e := range m.slaves[c.position].Entries {
		if e.Ref == entry {
			off := image.Offset{Byte: d.size + m.OffsetDelta[c.position]}
			d.size += e.Bytes
			return off, nil
		}
	}
	return image.Offset{}, fmt.Errorf("%w: %#04x:%d at position %d",
		ErrUnknownEntry, entry.Index, entry.SubIndex, c.position)
}

func (c *simConfig) AddSdo(index uint16, subIndex uint8, data []byte) error {
	c.Sdos = append(c.Sdos, image.SdoConfig{Index: index, SubIndex: subIndex, Data: data})
	return nil
}

func (c *simConfig) ConfigWatchdog(divider, intervals uint16) error {
	c.Watchdog = &image.WatchdogConfig{Divider: divider, Intervals: intervals}
	return nil
}

func (c *simConfig) ConfigDC(dc image.DCConfig) error {
	c.DC = &dc
	return nil
}

func (c *simConfig) Index() ConfigIdx { return c.idx }
