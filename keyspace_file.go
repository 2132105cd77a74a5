package munin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	muninerrors "github.com/tamirms/munin/errors"
)

// OpenKeySpace reads a key space file written by WriteKeySpace.
// The file is memory-mapped, verified and decoded; no file handle or
// mapping is held after OpenKeySpace returns.
func OpenKeySpace(path string) (*KeySpace, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key space file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat key space file: %w", err)
	}
	if stat.Size() < minFileSize {
		return nil, muninerrors.ErrTruncatedFile
	}

	fadviseSequential(int(file.Fd()), 0, stat.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap key space file: %w", err)
	}

	ks, err := ReadKeySpace([]byte(mm))
	if unmapErr := mm.Unmap(); unmapErr != nil {
		return nil, errors.Join(err, fmt.Errorf("mmap unmap failed: %w", unmapErr))
	}
	return ks, err
}

// ReadKeySpace decodes a key space from data in the key space file format.
// Keys are copied; data may be reused after ReadKeySpace returns.
func ReadKeySpace(data []byte) (*KeySpace, error) {
	if len(data) < minFileSize {
		return nil, muninerrors.ErrTruncatedFile
	}

	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, err
	}
	ftr, err := decodeFooter(data[len(data)-footerSize:])
	if err != nil {
		return nil, err
	}

	table := data[headerSize : len(data)-footerSize]
	if xxhash.Sum64(table) != ftr.KeyTableHash {
		return nil, muninerrors.ErrChecksumFailed
	}

	// Every key needs at least its length prefix.
	if hdr.NumKeys > uint64(len(table)/keyLenSize) {
		return nil, muninerrors.ErrCorruptedFile
	}

	keys := make([]string, hdr.NumKeys)
	offset := 0
	for i := range keys {
		if offset+keyLenSize > len(table) {
			return nil, muninerrors.ErrCorruptedFile
		}
		keyLen := int(binary.LittleEndian.Uint32(table[offset:]))
		offset += keyLenSize
		if keyLen > len(table)-offset {
			return nil, muninerrors.ErrCorruptedFile
		}
		keys[i] = string(table[offset : offset+keyLen])
		offset += keyLen
	}
	if offset != len(table) {
		return nil, muninerrors.ErrCorruptedFile
	}

	return NewKeySpace(keys, WithHasher(hdr.Hasher), WithSeed(hdr.Seed))
}

// UnmarshalBinary replaces ks with the key space decoded from data.
func (ks *KeySpace) UnmarshalBinary(data []byte) error {
	decoded, err := ReadKeySpace(data)
	if err != nil {
		return err
	}
	*ks = *decoded
	return nil
}
