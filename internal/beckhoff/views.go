package beckhoff

import "github.com/fieldio/ecatplc/internal/image"

// EL1859View reads and writes the digital channels of an EL1859 located at
// a byte offset within a composite image.
type EL1859View struct {
	img image.View
	off int
}

func NewEL1859View(img image.View, off int) EL1859View { return EL1859View{img: img, off: off} }

// Input returns the state of input channel ch (0..7).
func (v EL1859View) Input(ch int) bool {
	return v.img.Uint8(v.off)&(1<<uint(ch)) != 0
}

// SetOutput drives output channel ch (0..7).
func (v EL1859View) SetOutput(ch int, on bool) {
	b := v.img.Uint8(v.off + 1)
	if on {
		b |= 1 << uint(ch)
	} else {
		b &^= 1 << uint(ch)
	}
	v.img.SetUint8(v.off+1, b)
}

// Outputs returns the raw output byte.
func (v EL1859View) Outputs() uint8 { return v.img.Uint8(v.off + 1) }

// EL3104View reads the analog channels of an EL3104 located at a byte
// offset within a composite image.
type EL3104View struct {
	img image.View
	off int
}

func NewEL3104View(img image.View, off int) EL3104View { return EL3104View{img: img, off: off} }

// Status returns the status word of channel ch (0..3).
func (v EL3104View) Status(ch int) uint16 {
	return v.img.Uint16(v.off + 4*ch)
}

// Value returns the signed sample of channel ch (0..3).
func (v EL3104View) Value(ch int) int16 {
	return v.img.Int16(v.off + 4*ch + 2)
}
