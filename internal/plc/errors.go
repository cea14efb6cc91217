package plc

import "errors"

// Bring-up errors. All of them are configuration errors: they abort the
// whole startup with no partial activation.
var (
	ErrFirstEntryUnaligned = errors.New("plc: first registered entry not byte-aligned")
	ErrOffsetMismatch      = errors.New("plc: registered entry offset does not match declared layout")
	ErrSizeMismatch        = errors.New("plc: domain size does not match declared image size")
	ErrSlaveAbsent         = errors.New("plc: slave not present on the bus")
	ErrNoDescriptor        = errors.New("plc: no process image descriptor")
)
