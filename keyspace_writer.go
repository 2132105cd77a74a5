package munin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
)

// keySpaceWriter writes a key space file through a memory-mapped region.
// File layout: [Header 32B][Key Table][Footer 16B]
type keySpaceWriter struct {
	file *os.File
	mmap mmap.MMap
	data []byte // View into mmap for direct writes
	size int
}

// newKeySpaceWriter creates path, pre-allocates size bytes and maps them
// read-write.
func newKeySpaceWriter(path string, size int) (*keySpaceWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create key space file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("failed to mmap file: %w", err)
		return nil, errors.Join(primaryErr, file.Close())
	}

	w := &keySpaceWriter{
		file: file,
		mmap: mm,
		data: []byte(mm),
		size: size,
	}
	prefaultRegion(w.data)
	return w, nil
}

// finalize flushes the mapped region and closes the file.
// On error, delegates to close() for idempotent cleanup.
func (w *keySpaceWriter) finalize() error {
	if err := w.mmap.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, w.close())
	}

	unmapErr := w.mmap.Unmap()
	w.mmap = nil
	if unmapErr != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", unmapErr)
		return errors.Join(primaryErr, w.close())
	}

	closeErr := w.file.Close()
	w.file = nil
	return closeErr
}

// close releases the writer without flushing (for error cleanup).
// Idempotent: safe to call multiple times.
func (w *keySpaceWriter) close() error {
	var unmapErr error
	if w.mmap != nil {
		unmapErr = w.mmap.Unmap()
		w.mmap = nil
	}
	var closeErr error
	if w.file != nil {
		closeErr = w.file.Close()
		w.file = nil
	}
	return errors.Join(unmapErr, closeErr)
}

// encodedSize returns the size of the serialized key space.
func (ks *KeySpace) encodedSize() int {
	return headerSize + keyTableSize(ks.keys) + footerSize
}

// encodeInto serializes ks into buf, which must be encodedSize() bytes.
// The key table hash is computed while the keys are written.
func (ks *KeySpace) encodeInto(buf []byte) {
	hdr := header{
		Magic:   magic,
		Version: version,
		Hasher:  ks.hasher,
		NumKeys: uint64(len(ks.keys)),
		Seed:    ks.seed,
	}
	hdr.encodeTo(buf[:headerSize])

	offset := headerSize
	for _, key := range ks.keys {
		binary.LittleEndian.PutUint32(buf[offset:], uint32(len(key)))
		offset += keyLenSize
		offset += copy(buf[offset:], key)
	}

	ftr := footer{
		KeyTableHash: xxhash.Sum64(buf[headerSize:offset]),
	}
	ftr.encodeTo(buf[offset : offset+footerSize])
}

// WriteKeySpace writes ks to path, replacing any existing file. On error
// the partial file is removed.
func WriteKeySpace(path string, ks *KeySpace) error {
	w, err := newKeySpaceWriter(path, ks.encodedSize())
	if err != nil {
		return err
	}
	ks.encodeInto(w.data)
	if err := w.finalize(); err != nil {
		return errors.Join(err, os.Remove(path))
	}
	return nil
}

// MarshalBinary encodes ks in the key space file format.
func (ks *KeySpace) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ks.encodedSize())
	ks.encodeInto(buf)
	return buf, nil
}
