package pipelinecache

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/triangle/frame"
)

// Load returns the cache data stored at path if it was written for id. A
// missing file yields nil data. A file written for another device is
// deleted so the next Save repopulates it, and also yields nil data.
func Load(path string, id Identity) ([]byte, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		frame.Logger().Debug("pipeline cache miss", "path", path)
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading pipeline cache %s", path)
	}

	err = Check(data, id)
	if err != nil {
		frame.Logger().Warn("discarding pipeline cache", "path", path, "reason", err)
		// Not important if this fails; Save overwrites it.
		_ = os.Remove(path)
		return nil, nil
	}

	frame.Logger().Debug("pipeline cache loaded", "path", path, "bytes", len(data))
	return data, nil
}

// Check parses and validates the header at the start of data.
func Check(data []byte, id Identity) error {
	header, err := ParseHeader(data)
	if err != nil {
		return err
	}
	return header.Validate(id)
}

// Save writes data to path. An empty path disables persistence.
func Save(path string, data []byte) error {
	if path == "" {
		return nil
	}

	err := os.WriteFile(path, data, 0666)
	if err != nil {
		return errors.Wrapf(err, "writing pipeline cache %s", path)
	}

	frame.Logger().Debug("pipeline cache saved", "path", path, "bytes", len(data))
	return nil
}
