package ab1805

import (
	"encoding/binary"
	"reflect"

	"rtcnode-go/errcode"
	"rtcnode-go/x/mathx"
)

// RAMSize is the battery-backed RAM, reached through the 128-byte
// alternate window at 0x80 with XADA selecting the half.
const RAMSize = 256

func (d *Device) RAMLength() int { return RAMSize }

func checkRAMRange(op string, addr, n int) error {
	if addr < 0 || n < 0 || addr+n > RAMSize {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "outside 0..255"}
	}
	return nil
}

// ramChunk returns how many bytes at addr fit in one transaction of at
// most limit bytes without crossing the 128-byte half boundary, and
// selects that half.
func (r Regs) ramChunk(addr, remaining, limit int) (int, error) {
	n := mathx.Min(remaining, limit)
	if addr < 128 {
		n = mathx.Min(n, 128-addr)
		return n, r.ClearBits(regExtAddr, extAddrXADA)
	}
	return n, r.SetBits(regExtAddr, extAddrXADA)
}

func ramRegister(addr int) byte { return byte(regAltRAM + addr&0x7F) }

// ReadRAM fills buf from RAM starting at addr, splitting as needed.
func (d *Device) ReadRAM(addr int, buf []byte) error {
	return d.Locked(func(r Regs) error { return r.ReadRAM(addr, buf) })
}

func (r Regs) ReadRAM(addr int, buf []byte) error {
	if err := checkRAMRange("read ram", addr, len(buf)); err != nil {
		return err
	}
	for len(buf) > 0 {
		n, err := r.ramChunk(addr, len(buf), r.d.maxRead)
		if err != nil {
			return err
		}
		if err := r.ReadRegisters(ramRegister(addr), buf[:n]); err != nil {
			return err
		}
		addr += n
		buf = buf[n:]
	}
	return nil
}

// WriteRAM stores data in RAM starting at addr, splitting as needed.
func (d *Device) WriteRAM(addr int, data []byte) error {
	return d.Locked(func(r Regs) error { return r.WriteRAM(addr, data) })
}

func (r Regs) WriteRAM(addr int, data []byte) error {
	if err := checkRAMRange("write ram", addr, len(data)); err != nil {
		return err
	}
	for len(data) > 0 {
		n, err := r.ramChunk(addr, len(data), r.d.maxWrite)
		if err != nil {
			return err
		}
		if err := r.WriteRegisters(ramRegister(addr), data[:n]); err != nil {
			return err
		}
		addr += n
		data = data[n:]
	}
	return nil
}

// EraseRAM zeroes all 256 bytes in 16-byte writes.
func (d *Device) EraseRAM() error {
	var zero [16]byte
	return d.Locked(func(r Regs) error {
		for addr := 0; addr < RAMSize; addr += len(zero) {
			if err := r.WriteRAM(addr, zero[:]); err != nil {
				d.log.Errorf("erase failed addr=%d", addr)
				return err
			}
		}
		return nil
	})
}

// GetRAM decodes a fixed-size value stored little-endian at addr. Types
// without a fixed encoding (pointers, slices, strings, maps) are rejected
// before the bus is touched.
func GetRAM[T any](d *Device, addr int, v *T) error {
	n := -1
	if v != nil {
		n = fixedSize(v)
	}
	if n < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "get ram", Msg: "type has no fixed size"}
	}
	buf := make([]byte, n)
	if err := d.ReadRAM(addr, buf); err != nil {
		return err
	}
	if _, err := binary.Decode(buf, binary.LittleEndian, v); err != nil {
		return errcode.Wrap(errcode.InvalidPayload, "get ram", err)
	}
	return nil
}

// PutRAM stores v little-endian at addr.
func PutRAM[T any](d *Device, addr int, v T) error {
	n := fixedSize(&v)
	if n < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "put ram", Msg: "type has no fixed size"}
	}
	buf, err := binary.Append(make([]byte, 0, n), binary.LittleEndian, v)
	if err != nil {
		return errcode.Wrap(errcode.InvalidParams, "put ram", err)
	}
	return d.WriteRAM(addr, buf)
}

// binary.Size accepts slices; their length is not part of the type, so
// they are refused here too.
func fixedSize[T any](v *T) int {
	if reflect.TypeFor[T]().Kind() == reflect.Slice {
		return -1
	}
	return binary.Size(v)
}
