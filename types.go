package memdevice

// MemoryType is a single memory type exposed by a physical device: the properties memory of
// this type has, and the heap it draws from.
type MemoryType struct {
	// PropertyFlags are the properties of memory allocated from this type
	PropertyFlags MemoryPropertyFlags
	// HeapIndex is the index into DeviceProperties.MemoryHeaps of the heap this type
	// allocates from
	HeapIndex int
}

// MemoryHeap is a single memory heap exposed by a physical device.
type MemoryHeap struct {
	// Size is the total size of the heap in bytes
	Size int
}

// MappedMemoryRange identifies a sub-region of a mapped memory object to flush or invalidate.
// M is the backend's device memory handle type.
type MappedMemoryRange[M any] struct {
	// Memory is the memory object the range lies within
	Memory M
	// Offset is the offset in bytes of the start of the range within Memory
	Offset int
	// Size is the length of the range in bytes
	Size int
}

// DeviceProperties describes the memory capabilities of a physical device. It is built once,
// by a backend's prober, before the consuming allocator is created, and must not be mutated
// afterward.
type DeviceProperties struct {
	// MemoryTypes are the device's memory types, in the order the backend enumerates them.
	// Allocator memory type indices are indices into this slice.
	MemoryTypes []MemoryType
	// MemoryHeaps are the device's memory heaps, in the order the backend enumerates them
	MemoryHeaps []MemoryHeap
	// MaxMemoryAllocationCount is the maximum number of live allocations the device supports
	MaxMemoryAllocationCount int
	// MaxMemoryAllocationSize is the maximum size in bytes of a single allocation. Backends
	// that cannot determine the limit report math.MaxInt.
	MaxMemoryAllocationSize int
	// NonCoherentAtomSize is the alignment granularity in bytes for flush and invalidate
	// ranges on non-coherent memory. Guaranteed by the backend to be a power of two.
	NonCoherentAtomSize int
	// BufferDeviceAddress indicates whether the device can provide allocations that back
	// device-address-capable buffers
	BufferDeviceAddress bool
}

// MemoryTypeMinimumAlignment returns the minimum alignment the allocator must apply to
// suballocations from the memory type at memTypeIndex. Host-visible non-coherent memory must
// be aligned to the non-coherent atom so that flush and invalidate ranges never straddle a
// neighboring suballocation.
func (p *DeviceProperties) MemoryTypeMinimumAlignment(memTypeIndex int) int {
	if p.IsMemoryTypeHostNonCoherent(memTypeIndex) {
		if p.NonCoherentAtomSize < 1 {
			return 1
		}
		return p.NonCoherentAtomSize
	}

	return 1
}

// IsMemoryTypeHostNonCoherent returns whether the memory type at memTypeIndex is mappable but
// requires explicit flush and invalidate calls.
func (p *DeviceProperties) IsMemoryTypeHostNonCoherent(memTypeIndex int) bool {
	flags := p.MemoryTypes[memTypeIndex].PropertyFlags

	return flags&(MemoryPropertyHostVisible|MemoryPropertyHostCoherent) == MemoryPropertyHostVisible
}

// AlignRangeToAtom expands the byte range [offset, offset+size) outward so that both ends lie
// on NonCoherentAtomSize boundaries, and returns the expanded offset and size. Flush and
// invalidate ranges on non-coherent memory must be aligned this way.
func (p *DeviceProperties) AlignRangeToAtom(offset int, size int) (int, int) {
	atomSize := uint(p.NonCoherentAtomSize)
	if atomSize <= 1 {
		return offset, size
	}

	alignedOffset := AlignDown(offset, atomSize)
	alignedEnd := AlignUp(offset+size, atomSize)
	return alignedOffset, alignedEnd - alignedOffset
}
