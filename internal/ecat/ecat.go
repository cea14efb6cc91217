// Package ecat defines the bus-master binding consumed by the cyclic
// engine: open/reserve/configure/activate/exchange primitives. The real
// master driver lives behind this interface; the package also ships an
// in-memory simulated master for tests and off-hardware runs.
package ecat

import (
	"errors"
	"time"

	"github.com/fieldio/ecatplc/internal/image"
)

var (
	ErrNoDriver      = errors.New("ecat: no master driver available")
	ErrNotActivated  = errors.New("ecat: master not activated")
	ErrActivated     = errors.New("ecat: master already activated")
	ErrUnknownDomain = errors.New("ecat: unknown domain")
	ErrUnknownEntry  = errors.New("ecat: unknown pdo entry")
	ErrUnknownConfig = errors.New("ecat: unknown slave config")
)

// Access is the master access mode requested at open time.
type Access int

const (
	ReadOnly Access = iota
	ReadWrite
)

// DomainIdx names one exchange domain on a master.
type DomainIdx int

// ConfigIdx names one slave configuration handle.
type ConfigIdx int

// ConfigInfo reports the live state of a slave configuration. SlavePosition
// is nil while no matching slave is present on the bus.
type ConfigInfo struct {
	SlavePosition *uint16
}

// SlaveConfig is the live configuration handle for one slave position. It
// exists only during bring-up and is discarded once presence is confirmed.
type SlaveConfig interface {
	ConfigSyncManagerPdos(sm image.SyncManagerConfig, pdos []image.PdoConfig) error
	RegisterPdoEntry(entry image.EntryRef, domain DomainIdx) (image.Offset, error)
	AddSdo(index uint16, subIndex uint8, data []byte) error
	ConfigWatchdog(divider, intervals uint16) error
	ConfigDC(dc image.DCConfig) error
	Index() ConfigIdx
}

// Master is the field-bus master binding. The engine goroutine is the sole
// caller for the whole process lifetime.
type Master interface {
	Reserve() error
	CreateDomain() (DomainIdx, error)
	ConfigureSlave(position uint16, id image.Identity) (SlaveConfig, error)
	ConfigInfo(idx ConfigIdx) (ConfigInfo, error)
	DomainSize(domain DomainIdx) (int, error)
	SetApplicationTime(t time.Time) error
	Activate() error

	// per-tick exchange primitives
	Receive() error
	ProcessDomain(domain DomainIdx) error
	DomainData(domain DomainIdx) ([]byte, error)
	QueueDomain(domain DomainIdx) error
	Send() error
}

// Opener opens a master by numeric id. The default opener fails: a real
// driver or the simulated master must be supplied by the caller.
type Opener func(id uint32, access Access) (Master, error)

// NoDriver is the Opener used when no bus backend is wired in.
func NoDriver(uint32, Access) (Master, error) { return nil, ErrNoDriver }
