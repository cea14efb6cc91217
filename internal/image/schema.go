// Package image implements the process-image descriptor model: a declarative
// schema of device field layouts and annotations, compiled into an immutable
// descriptor that the cyclic engine turns into a live bus configuration.
package image

// Identity names one slave hardware type on the bus.
type Identity struct {
	VendorID    uint32
	ProductCode uint32
}

// EntryRef addresses one object-dictionary entry.
type EntryRef struct {
	Index    uint16
	SubIndex uint8
}

// Offset is a position within the shared process image. Only Bit 0 is
// supported for registered entries.
type Offset struct {
	Byte int
	Bit  int
}

// Direction is the transfer direction of a sync manager.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Entry is the per-field "entry" annotation. A zero Pdo means the field
// feeds only the register table and joins no PDO group.
type Entry struct {
	Pdo      uint16
	Index    uint16
	SubIndex uint8
}

// Field is one declared image field. Bits must be 8, 16, 32 or 64; byte
// offsets accumulate strictly in field declaration order.
type Field struct {
	Name  string
	Bits  int
	Entry *Entry
}

// SyncManagerSpec is the device-level "pdos" annotation: one sync manager
// index, its direction, and the PDO indices assigned to it.
type SyncManagerSpec struct {
	Index uint8
	Dir   Direction
	Pdos  []uint16
}

// WatchdogSpec is the optional device-level watchdog annotation.
type WatchdogSpec struct {
	Divider   uint16
	Intervals uint16
}

// DCSpec is the optional device-level distributed-clock annotation.
type DCSpec struct {
	AssignActivate uint16
	CycleTime0     uint32
	ShiftTime0     int32
	CycleTime1     uint32
	ShiftTime1     int32
}

// SdoValue is either a literal byte string or a named placeholder resolved
// from a ConfigSource when the descriptor is turned into a configuration.
type SdoValue struct {
	data []byte
	name string
}

func SdoBytes(b []byte) SdoValue { return SdoValue{data: b} }

// SdoVar names a runtime config value; resolution failure is a
// configuration-time error, not a compile-time one.
func SdoVar(name string) SdoValue { return SdoValue{name: name} }

// SdoSpec is one SDO initial value uploaded during bring-up.
type SdoSpec struct {
	Index    uint16
	SubIndex uint8
	Value    SdoValue
}

// Schema is a caller-built description of one device type: its ordered
// field list plus device-level annotations. Identity is inferred from Name
// (two-letter family + 4-digit number) unless overridden.
type Schema struct {
	Name         string
	Identity     *Identity
	Fields       []Field
	SyncManagers []SyncManagerSpec
	Watchdog     *WatchdogSpec
	DC           *DCSpec
	Sdos         []SdoSpec
}

// ConfigSource supplies named SDO override values at configuration time.
type ConfigSource interface {
	SdoVar(name string) ([]byte, bool)
}

// SdoVars is a plain map ConfigSource.
type SdoVars map[string][]byte

func (m SdoVars) SdoVar(name string) ([]byte, bool) {
	v, ok := m[name]
	return v, ok
}

// NoConfig resolves nothing; descriptors without named placeholders can be
// configured against it.
type NoConfig struct{}

func (NoConfig) SdoVar(string) ([]byte, bool) { return nil, false }
