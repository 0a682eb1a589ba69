package pipelinecache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestLoadMissingFile(t *testing.T) {
	data, err := Load(filepath.Join(t.TempDir(), "cache.bin"), testIdentity)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data != nil {
		t.Errorf("Load() = %d bytes, want nil", len(data))
	}
}

func TestLoadEmptyPath(t *testing.T) {
	data, err := Load("", testIdentity)
	if err != nil || data != nil {
		t.Errorf("Load(\"\") = %v, %v; want nil, nil", data, err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bin")
	want := cacheBytes(t, validHeader(), 0xaa, 0xbb)

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path, testIdentity)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = % x, want % x", got, want)
	}
}

func TestLoadDiscardsForeignCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.bin")
	h := validHeader()
	h.DeviceID++
	if err := os.WriteFile(path, cacheBytes(t, h), 0666); err != nil {
		t.Fatal(err)
	}

	data, err := Load(path, testIdentity)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data != nil {
		t.Error("Load() returned data written for another device")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("foreign cache file still present (stat error = %v)", err)
	}
}

func TestLoadUnreadable(t *testing.T) {
	// A directory cannot be read as a file.
	_, err := Load(t.TempDir(), testIdentity)
	if err == nil {
		t.Fatal("Load() of a directory succeeded, want error")
	}
}

func TestCheck(t *testing.T) {
	if err := Check(cacheBytes(t, validHeader()), testIdentity); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := Check([]byte("garbage"), testIdentity); !errors.Is(err, ErrInvalid) {
		t.Errorf("Check() error = %v, want ErrInvalid", err)
	}
}

func TestSaveEmptyPath(t *testing.T) {
	if err := Save("", []byte{1}); err != nil {
		t.Errorf("Save(\"\") error = %v", err)
	}
}
