package image

// WatchdogMode selects the device watchdog behaviour for a sync manager.
type WatchdogMode int

const (
	WatchdogDefault WatchdogMode = iota
	WatchdogEnable
	WatchdogDisable
)

// PdoEntryInfo is one entry inside a PDO mapping, in field order.
type PdoEntryInfo struct {
	Entry  EntryRef
	BitLen uint8
	Name   string
	Pos    uint8
}

// PdoConfig is one PDO with its ordered entry list.
type PdoConfig struct {
	Index   uint16
	Entries []PdoEntryInfo
}

// SyncManagerConfig groups PDOs for one transfer direction.
type SyncManagerConfig struct {
	Index    uint8
	Dir      Direction
	Watchdog WatchdogMode
}

// SyncPdos pairs a sync manager with the PDOs assigned to it.
type SyncPdos struct {
	SM   SyncManagerConfig
	Pdos []PdoConfig
}

// RegEntry maps an object-dictionary entry to its device-local offset.
// Offsets are local to the device; the engine anchors them to the absolute
// bus-reported position at bring-up.
type RegEntry struct {
	Entry EntryRef
	At    Offset
	Bits  int
}

// SdoConfig is one resolved SDO initial value.
type SdoConfig struct {
	Index    uint16
	SubIndex uint8
	Data     []byte
}

// WatchdogConfig carries the bus watchdog divider and interval count.
type WatchdogConfig struct {
	Divider   uint16
	Intervals uint16
}

// DCConfig carries distributed-clock sync parameters.
type DCConfig struct {
	AssignActivate uint16
	CycleTime0     uint32
	ShiftTime0     int32
	CycleTime1     uint32
	ShiftTime1     int32
}

// Device is the compiled plan for one slave position.
type Device struct {
	Name     string
	Identity Identity
	Sync     []SyncPdos // nil means device defaults
	Regs     []RegEntry
	Sdos     []SdoSpec
	Watchdog *WatchdogConfig
	DC       *DCConfig
	Size     int
}

// Descriptor is the compiled configuration plan for a whole process image:
// an ordered list of device plans. Descriptors are pure values, computed
// once before bring-up and never mutated afterwards.
type Descriptor struct {
	Name    string
	Devices []Device
}

// SlaveCount is the number of bus positions the image occupies.
func (d *Descriptor) SlaveCount() int { return len(d.Devices) }

// Identities returns the per-position slave identities, in bus order.
func (d *Descriptor) Identities() []Identity {
	ids := make([]Identity, len(d.Devices))
	for i, dev := range d.Devices {
		ids[i] = dev.Identity
	}
	return ids
}

// PdoConfigs returns the per-position sync-manager assignments; a nil
// element means the device's default PDO mapping is used.
func (d *Descriptor) PdoConfigs() [][]SyncPdos {
	out := make([][]SyncPdos, len(d.Devices))
	for i, dev := range d.Devices {
		out[i] = dev.Sync
	}
	return out
}

// RegisterTables returns the per-position register tables with device-local
// offsets.
func (d *Descriptor) RegisterTables() [][]RegEntry {
	out := make([][]RegEntry, len(d.Devices))
	for i, dev := range d.Devices {
		out[i] = dev.Regs
	}
	return out
}

// SdoConfigs resolves every SDO initial value against src. A named
// placeholder that src cannot resolve fails here, at configuration time.
func (d *Descriptor) SdoConfigs(src ConfigSource) ([][]SdoConfig, error) {
	out := make([][]SdoConfig, len(d.Devices))
	for i, dev := range d.Devices {
		cfgs := make([]SdoConfig, 0, len(dev.Sdos))
		for _, s := range dev.Sdos {
			data, err := s.Value.resolve(src)
			if err != nil {
				return nil, err
			}
			cfgs = append(cfgs, SdoConfig{Index: s.Index, SubIndex: s.SubIndex, Data: data})
		}
		out[i] = cfgs
	}
	return out, nil
}

// WatchdogDC returns the optional watchdog and distributed-clock settings
// for the device at position i.
func (d *Descriptor) WatchdogDC(i int) (*WatchdogConfig, *DCConfig) {
	dev := d.Devices[i]
	return dev.Watchdog, dev.DC
}

// ByteSize is the total declared image size: the sum of per-field byte
// lengths over all devices, in declaration order.
func (d *Descriptor) ByteSize() int {
	total := 0
	for _, dev := range d.Devices {
		total += dev.Size
	}
	return total
}

// DeviceOffset is the byte position of device i within the image, assuming
// devices are laid out contiguously in descriptor order.
func (d *Descriptor) DeviceOffset(i int) int {
	off := 0
	for _, dev := range d.Devices[:i] {
		off += dev.Size
	}
	return off
}

// View reinterprets buf as the typed image for one tick. The caller
// guarantees that buf outlives the view and is not aliased elsewhere while
// the view is in use.
func (d *Descriptor) View(buf []byte) (View, error) {
	if len(buf) != d.ByteSize() {
		return View{}, ErrBufferSize
	}
	return View{b: buf}, nil
}
