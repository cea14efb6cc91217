package image

import (
	"encoding/binary"
	"fmt"
)

// View is a bounds-checked reinterpretation of a raw image buffer. All
// multi-byte accessors use the bus byte order (little endian). Accessors
// panic on out-of-range offsets: a bad offset is a layout bug, the image
// equivalent of an out-of-range slice index.
type View struct {
	b []byte
}

// ViewOf wraps buf without a size contract; used for the external image,
// whose layout is owned by the caller.
func ViewOf(buf []byte) View { return View{b: buf} }

func (v View) Len() int      { return len(v.b) }
func (v View) Bytes() []byte { return v.b }

func (v View) check(off, n int) {
	if off < 0 || off+n > len(v.b) {
		panic(fmt.Sprintf("image: access of %d bytes at %d outside image of %d bytes", n, off, len(v.b)))
	}
}

func (v View) Uint8(off int) uint8 {
	v.check(off, 1)
	return v.b[off]
}

func (v View) SetUint8(off int, x uint8) {
	v.check(off, 1)
	v.b[off] = x
}

func (v View) Uint16(off int) uint16 {
	v.check(off, 2)
	return binary.LittleEndian.Uint16(v.b[off:])
}

func (v View) SetUint16(off int, x uint16) {
	v.check(off, 2)
	binary.LittleEndian.PutUint16(v.b[off:], x)
}

func (v View) Uint32(off int) uint32 {
	v.check(off, 4)
	return binary.LittleEndian.Uint32(v.b[off:])
}

func (v View) SetUint32(off int, x uint32) {
	v.check(off, 4)
	binary.LittleEndian.PutUint32(v.b[off:], x)
}

func (v View) Uint64(off int) uint64 {
	v.check(off, 8)
	return binary.LittleEndian.Uint64(v.b[off:])
}

func (v View) SetUint64(off int, x uint64) {
	v.check(off, 8)
	binary.LittleEndian.PutUint64(v.b[off:], x)
}

func (v View) Int16(off int) int16       { return int16(v.Uint16(off)) }
func (v View) SetInt16(off int, x int16) { v.SetUint16(off, uint16(x)) }
func (v View) Int32(off int) int32       { return int32(v.Uint32(off)) }
func (v View) SetInt32(off int, x int32) { v.SetUint32(off, uint32(x)) }
