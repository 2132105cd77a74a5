package munin

import (
	"encoding/binary"

	muninerrors "github.com/tamirms/munin/errors"
)

const (
	// magic number for key space files, "MUNK" in little-endian
	magic = uint32(0x4B4E554D)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (32 bytes)
	headerSize = 32

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16

	// keyLenSize is the size of the length prefix of each key in the key table
	keyLenSize = 4

	// minFileSize holds a header, one empty key and a footer.
	minFileSize = headerSize + keyLenSize + footerSize
)

// header is the 32-byte key space file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x4B4E554D ("MUNK")
//	4       2     Version   0x0001
//	6       2     Hasher    uint16_le (0=xxh3, 1=murmur3)
//	8       8     NumKeys   uint64_le
//	16      8     Seed      uint64_le
//	24      8     Reserved  [8]byte (zero)
//
// The key table follows the header: NumKeys entries of
// [length uint32_le][key bytes], in index order.
type header struct {
	Magic    uint32
	Version  uint16
	Hasher   HasherID
	NumKeys  uint64
	Seed     uint64
	Reserved [8]byte
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Hasher))
	binary.LittleEndian.PutUint64(buf[8:16], h.NumKeys)
	binary.LittleEndian.PutUint64(buf[16:24], h.Seed)
	copy(buf[24:32], h.Reserved[:])
}

// decodeHeader parses a 32-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, muninerrors.ErrTruncatedFile
	}

	h := &header{
		Magic:   binary.LittleEndian.Uint32(buf[0:4]),
		Version: binary.LittleEndian.Uint16(buf[4:6]),
		Hasher:  HasherID(binary.LittleEndian.Uint16(buf[6:8])),
		NumKeys: binary.LittleEndian.Uint64(buf[8:16]),
		Seed:    binary.LittleEndian.Uint64(buf[16:24]),
	}
	copy(h.Reserved[:], buf[24:32])

	if h.Magic != magic {
		return nil, muninerrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, muninerrors.ErrInvalidVersion
	}
	if h.NumKeys == 0 || h.NumKeys > maxKeys {
		return nil, muninerrors.ErrCorruptedFile
	}

	return h, nil
}

// footer is the 16-byte file footer.
//
// Layout:
//
//	Offset  Size  Field         Type
//	0       8     KeyTableHash  uint64_le (xxHash64 of the key table)
//	8       8     Reserved      [8]byte (zero)
type footer struct {
	KeyTableHash uint64
	Reserved     [8]byte
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.KeyTableHash)
	copy(buf[8:16], f.Reserved[:])
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, muninerrors.ErrTruncatedFile
	}

	f := &footer{
		KeyTableHash: binary.LittleEndian.Uint64(buf[0:8]),
	}
	copy(f.Reserved[:], buf[8:16])

	return f, nil
}

// keyTableSize returns the encoded size of keys in the key table.
func keyTableSize(keys []string) int {
	size := 0
	for _, key := range keys {
		size += keyLenSize + len(key)
	}
	return size
}
