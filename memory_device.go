// Package memdevice defines the contract between a generic GPU memory allocator and the
// graphics backend it allocates from: a small set of primitive device memory operations,
// plus an immutable description of the memory capabilities of a physical device. Backends
// (such as the vulkan subpackage) satisfy the contract; allocators consume it without ever
// seeing backend-specific types or error codes.
package memdevice

import "unsafe"

// MemoryDevice is the set of primitive device memory operations an allocator requires from a
// graphics backend. M is the backend's device memory handle type.
//
// Implementations translate backend error codes into this package's sentinel errors and treat
// any error code the backend's specification does not document for a call as a broken
// invariant, panicking rather than reporting it. They perform no locking: concurrent
// operations against the same memory object are only as safe as the backend itself permits,
// and synchronizing them is the caller's responsibility.
type MemoryDevice[M any] interface {
	// AllocateMemory allocates size bytes from the memory type at memoryTypeIndex and returns
	// the new memory object. Fails with ErrOutOfDeviceMemory or ErrOutOfHostMemory. Panics if
	// flags contains any bit other than AllocationDeviceAddress.
	AllocateMemory(size int, memoryTypeIndex int, flags AllocationFlags) (M, error)
	// DeallocateMemory returns memory to the backend. It cannot fail: the backend guarantees
	// success once it has accepted a valid handle.
	DeallocateMemory(memory M)
	// MapMemory maps size bytes of memory starting at offset into host address space and
	// returns a non-nil pointer to the mapping. Fails with ErrOutOfDeviceMemory,
	// ErrOutOfHostMemory, or ErrMapFailed.
	MapMemory(memory M, offset int, size int) (unsafe.Pointer, error)
	// UnmapMemory unmaps a mapping previously created with MapMemory. It cannot fail.
	UnmapMemory(memory M)
	// FlushMemoryRanges makes host writes to the provided ranges visible to the device in one
	// batched call. Required for memory types without MemoryPropertyHostCoherent. Fails with
	// ErrOutOfDeviceMemory or ErrOutOfHostMemory.
	FlushMemoryRanges(ranges []MappedMemoryRange[M]) error
	// InvalidateMemoryRanges makes device writes to the provided ranges visible to the host in
	// one batched call. Required for memory types without MemoryPropertyHostCoherent. Fails
	// with ErrOutOfDeviceMemory or ErrOutOfHostMemory.
	InvalidateMemoryRanges(ranges []MappedMemoryRange[M]) error
}
