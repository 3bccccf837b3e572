package memdevice

import "github.com/vkngwrapper/core/v2/common"

// MemoryPropertyFlags describes the behavior of a single memory type: where it lives, whether
// the host can see it, and how host/device caches interact with it.
type MemoryPropertyFlags int32

var memoryPropertyFlagsMapping = common.NewFlagStringMapping[MemoryPropertyFlags]()

func (f MemoryPropertyFlags) Register(str string) {
	memoryPropertyFlagsMapping.Register(f, str)
}
func (f MemoryPropertyFlags) String() string {
	return memoryPropertyFlagsMapping.FlagsToString(f)
}

const (
	// MemoryPropertyDeviceLocal memory is the most efficient for device access
	MemoryPropertyDeviceLocal MemoryPropertyFlags = 1 << iota
	// MemoryPropertyHostVisible memory can be mapped into host address space
	MemoryPropertyHostVisible
	// MemoryPropertyHostCoherent memory does not require flush/invalidate calls to keep host
	// and device views consistent
	MemoryPropertyHostCoherent
	// MemoryPropertyHostCached memory is cached on the host; host access is faster, but the
	// memory is not necessarily coherent
	MemoryPropertyHostCached
	// MemoryPropertyLazilyAllocated memory may have its backing committed lazily by the device
	// and cannot be host-visible
	MemoryPropertyLazilyAllocated
)

func init() {
	MemoryPropertyDeviceLocal.Register("MemoryPropertyDeviceLocal")
	MemoryPropertyHostVisible.Register("MemoryPropertyHostVisible")
	MemoryPropertyHostCoherent.Register("MemoryPropertyHostCoherent")
	MemoryPropertyHostCached.Register("MemoryPropertyHostCached")
	MemoryPropertyLazilyAllocated.Register("MemoryPropertyLazilyAllocated")
}

// AllocationFlags request optional behavior for a single MemoryDevice.AllocateMemory call.
// Passing any bit outside the constants declared here is a programming error and panics.
type AllocationFlags int32

var allocationFlagsMapping = common.NewFlagStringMapping[AllocationFlags]()

func (f AllocationFlags) Register(str string) {
	allocationFlagsMapping.Register(f, str)
}
func (f AllocationFlags) String() string {
	return allocationFlagsMapping.FlagsToString(f)
}

const (
	// AllocationDeviceAddress requests memory that can back buffers queried for a device
	// address. Only honored when DeviceProperties.BufferDeviceAddress is true for the probed
	// device.
	AllocationDeviceAddress AllocationFlags = 1 << iota
)

func init() {
	AllocationDeviceAddress.Register("AllocationDeviceAddress")
}
