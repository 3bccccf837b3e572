package memdevice

import "github.com/cockroachdb/errors"

// ErrOutOfDeviceMemory is returned from allocate, map, flush, and invalidate operations when
// the device has run out of memory.
var ErrOutOfDeviceMemory = errors.New("out of device memory")

// ErrOutOfHostMemory is returned from allocate, map, flush, and invalidate operations when
// the host has run out of memory.
var ErrOutOfHostMemory = errors.New("out of host memory")

// ErrMapFailed is returned from map operations when the backend could not map the requested
// range for a reason other than memory pressure.
var ErrMapFailed = errors.New("memory map failed")
