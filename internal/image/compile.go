package image

import "fmt"

// Vendor and family constants for the EK/EL terminal naming convention:
// product code is number<<16 | family constant.
const (
	beckhoffVendor   = 2
	familyCouplerEK  = 0x2c52
	familyTerminalEL = 0x3052
)

func inferIdentity(name string) (Identity, error) {
	if len(name) < 6 {
		return Identity{}, fmt.Errorf("%w: %q", ErrUnknownDeviceName, name)
	}
	nr := 0
	for _, c := range name[2:6] {
		if c < '0' || c > '9' {
			return Identity{}, fmt.Errorf("%w: %q", ErrUnknownDeviceName, name)
		}
		nr = nr*10 + int(c-'0')
	}
	switch name[:2] {
	case "EK":
		return Identity{VendorID: beckhoffVendor, ProductCode: uint32(nr)<<16 | familyCouplerEK}, nil
	case "EL":
		return Identity{VendorID: beckhoffVendor, ProductCode: uint32(nr)<<16 | familyTerminalEL}, nil
	}
	return Identity{}, fmt.Errorf("%w: %q", ErrUnknownDeviceName, name)
}

// Compile turns one device schema into a single-device descriptor. The
// running byte offset accumulates strictly in field declaration order,
// independent of any annotation.
func Compile(s Schema) (*Descriptor, error) {
	id, err := identityFor(s)
	if err != nil {
		return nil, err
	}

	var (
		regs    []RegEntry
		size    int
		grouped = map[uint16][]PdoEntryInfo{}
	)
	for _, f := range s.Fields {
		switch f.Bits {
		case 8, 16, 32, 64:
		default:
			return nil, fmt.Errorf("%w: field %q has %d bits", ErrFieldWidth, f.Name, f.Bits)
		}
		if e := f.Entry; e != nil {
			ref := EntryRef{Index: e.Index, SubIndex: e.SubIndex}
			regs = append(regs, RegEntry{Entry: ref, At: Offset{Byte: size}, Bits: f.Bits})
			if e.Pdo != 0 {
				grouped[e.Pdo] = append(grouped[e.Pdo], PdoEntryInfo{
					Entry:  ref,
					BitLen: uint8(f.Bits),
					Name:   f.Name,
				})
			}
		}
		size += f.Bits / 8
	}

	var sync []SyncPdos
	for _, sm := range s.SyncManagers {
		pdos := make([]PdoConfig, 0, len(sm.Pdos))
		for _, ix := range sm.Pdos {
			// an unresolved pdo index yields an empty entry list
			pdos = append(pdos, PdoConfig{Index: ix, Entries: grouped[ix]})
		}
		sync = append(sync, SyncPdos{
			SM:   SyncManagerConfig{Index: sm.Index, Dir: sm.Dir, Watchdog: WatchdogDefault},
			Pdos: pdos,
		})
	}

	dev := Device{
		Name:     s.Name,
		Identity: id,
		Sync:     sync,
		Regs:     regs,
		Sdos:     append([]SdoSpec(nil), s.Sdos...),
		Size:     size,
	}
	if s.Watchdog != nil {
		dev.Watchdog = &WatchdogConfig{Divider: s.Watchdog.Divider, Intervals: s.Watchdog.Intervals}
	}
	if s.DC != nil {
		dc := DCConfig(*s.DC)
		dev.DC = &dc
	}
	return &Descriptor{Name: s.Name, Devices: []Device{dev}}, nil
}

func identityFor(s Schema) (Identity, error) {
	if s.Identity != nil {
		return *s.Identity, nil
	}
	return inferIdentity(s.Name)
}

// MustCompile is Compile for static catalog schemas that are known good.
func MustCompile(s Schema) *Descriptor {
	d, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Member is one composing slot of a composite image. SdoOverride, when set,
// replaces the sub-component's own SDO table for that slot; it is only
// meaningful for single-slave members.
type Member struct {
	Desc        *Descriptor
	SdoOverride []SdoSpec
}

// Compose concatenates members into one composite descriptor: slave counts,
// identities, PDO assignments and register tables are carried over
// unmodified, so sub-device offsets stay local.
func Compose(name string, members ...Member) (*Descriptor, error) {
	out := &Descriptor{Name: name}
	for i, m := range members {
		if m.SdoOverride != nil && m.Desc.SlaveCount() != 1 {
			return nil, fmt.Errorf("%w: member %d has %d slaves", ErrSdoOverride, i, m.Desc.SlaveCount())
		}
		for _, dev := range m.Desc.Devices {
			if m.SdoOverride != nil {
				dev.Sdos = append([]SdoSpec(nil), m.SdoOverride...)
			}
			out.Devices = append(out.Devices, dev)
		}
	}
	return out, nil
}

// Repeat builds a descriptor for n identical copies of d: identities, PDO
// assignments and register tables each repeated n times.
func Repeat(d *Descriptor, n int) (*Descriptor, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrRepeatCount, n)
	}
	out := &Descriptor{Name: fmt.Sprintf("%s[%d]", d.Name, n)}
	for i := 0; i < n; i++ {
		out.Devices = append(out.Devices, d.Devices...)
	}
	return out, nil
}

func (v SdoValue) resolve(src ConfigSource) ([]byte, error) {
	if v.name == "" {
		return v.data, nil
	}
	data, ok := src.SdoVar(v.name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvedSdoVar, v.name)
	}
	return data, nil
}
