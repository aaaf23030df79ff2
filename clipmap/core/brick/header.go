package brick

import "encoding/binary"

// HeaderSize is the exact on-wire size of BrickHeader, matching the GPU
// buffer layout consumed by an upload.Uploader.
const HeaderSize = 32

// Header is the GPU-facing brick header (32 bytes).
type Header struct {
	PaletteLen uint8
	Encoding   Encoding
	Flags      uint16
	DataIndex  uint32
	OccL0Lo    uint32
	OccL0Hi    uint32
	OccL1      uint8
	OccL2      uint8
	// Padding keeps the struct's field layout aligned with the wire format;
	// it carries no meaning and is always written as zero.
	Padding  uint16
	AvgColor uint32
	Pad0     uint32
	Pad1     uint32
}

// defaultHeader is the header value stored at BrickId 0 and restored on
// FreeBrick: Raw16 encoding with palette length zero, matching the
// original implementation's Default impl.
func defaultHeader() Header {
	return Header{Encoding: EncodingRaw16}
}

// MarshalBinary encodes a Header into exactly HeaderSize little-endian bytes.
func (h Header) MarshalBinary() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.PaletteLen
	buf[1] = uint8(h.Encoding)
	binary.LittleEndian.PutUint16(buf[2:4], h.Flags)
	binary.LittleEndian.PutUint32(buf[4:8], h.DataIndex)
	binary.LittleEndian.PutUint32(buf[8:12], h.OccL0Lo)
	binary.LittleEndian.PutUint32(buf[12:16], h.OccL0Hi)
	buf[16] = h.OccL1
	buf[17] = h.OccL2
	binary.LittleEndian.PutUint16(buf[18:20], h.Padding)
	binary.LittleEndian.PutUint32(buf[20:24], h.AvgColor)
	binary.LittleEndian.PutUint32(buf[24:28], h.Pad0)
	binary.LittleEndian.PutUint32(buf[28:32], h.Pad1)
	return buf
}

// UnmarshalHeader decodes a Header from exactly HeaderSize little-endian bytes.
func UnmarshalHeader(buf []byte) Header {
	_ = buf[HeaderSize-1]
	enc, _ := EncodingFromByte(buf[1])
	return Header{
		PaletteLen: buf[0],
		Encoding:   enc,
		Flags:      binary.LittleEndian.Uint16(buf[2:4]),
		DataIndex:  binary.LittleEndian.Uint32(buf[4:8]),
		OccL0Lo:    binary.LittleEndian.Uint32(buf[8:12]),
		OccL0Hi:    binary.LittleEndian.Uint32(buf[12:16]),
		OccL1:      buf[16],
		OccL2:      buf[17],
		Padding:    binary.LittleEndian.Uint16(buf[18:20]),
		AvgColor:   binary.LittleEndian.Uint32(buf[20:24]),
		Pad0:       binary.LittleEndian.Uint32(buf[24:28]),
		Pad1:       binary.LittleEndian.Uint32(buf[28:32]),
	}
}
