// Package pipelinecache persists Vulkan pipeline cache data between runs
// and refuses data written by a different device or driver.
package pipelinecache

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const (
	// HeaderSize is the size of a version one cache header.
	HeaderSize = 32
	// HeaderVersionOne is VK_PIPELINE_CACHE_HEADER_VERSION_ONE.
	HeaderVersionOne uint32 = 1
)

// ErrInvalid marks cache data that must not be handed to the driver.
var ErrInvalid = errors.New("invalid pipeline cache data")

// Identity is what a cache header must match: the device's vendor and
// device IDs and its pipeline cache UUID.
type Identity struct {
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

// Header is the version one pipeline cache header. Every field is stored
// least significant byte first.
//
//	offset  size  field
//	     0     4  header length in bytes
//	     4     4  header version
//	     8     4  vendor ID
//	    12     4  device ID
//	    16    16  pipeline cache UUID
type Header struct {
	Length    uint32
	Version   uint32
	VendorID  uint32
	DeviceID  uint32
	CacheUUID uuid.UUID
}

func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < HeaderSize {
		return h, errors.Mark(errors.Newf("cache is %d bytes, shorter than its %d byte header", len(data), HeaderSize), ErrInvalid)
	}

	err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h)
	if err != nil {
		return h, errors.Mark(errors.Wrap(err, "reading cache header"), ErrInvalid)
	}
	return h, nil
}

// MarshalBinary encodes h in its on-disk layout.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	err := binary.Write(&buf, binary.LittleEndian, h)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate reports every way h disagrees with id. The returned error is
// marked with ErrInvalid.
func (h Header) Validate(id Identity) error {
	var err error

	if h.Length < HeaderSize {
		err = errors.CombineErrors(err, errors.Newf("bad header length 0x%x", h.Length))
	}
	if h.Version != HeaderVersionOne {
		err = errors.CombineErrors(err, errors.Newf("unsupported header version 0x%x", h.Version))
	}
	if h.VendorID != id.VendorID {
		err = errors.CombineErrors(err, errors.Newf("vendor ID mismatch: cache has 0x%x, driver expects 0x%x", h.VendorID, id.VendorID))
	}
	if h.DeviceID != id.DeviceID {
		err = errors.CombineErrors(err, errors.Newf("device ID mismatch: cache has 0x%x, driver expects 0x%x", h.DeviceID, id.DeviceID))
	}
	if h.CacheUUID != id.CacheUUID {
		err = errors.CombineErrors(err, errors.Newf("UUID mismatch: cache has %s, driver expects %s", h.CacheUUID, id.CacheUUID))
	}

	if err != nil {
		return errors.Mark(err, ErrInvalid)
	}
	return nil
}
