package memdevice

import "github.com/cockroachdb/errors"

// Validatable is used by the DebugValidate method to allow it to act upon
// all types with a Validate method
type Validatable interface {
	Validate() error
}

// Validate performs consistency checks on a probed capability record: every memory type must
// reference a heap that exists, and the non-coherent atom size must be a power of two.
// Backends guarantee both, so a failure indicates a hand-built or corrupted record. Consumers
// that construct an allocator from a record they did not probe themselves should call this
// first.
func (p *DeviceProperties) Validate() error {
	for typeIndex, memoryType := range p.MemoryTypes {
		if memoryType.HeapIndex < 0 || memoryType.HeapIndex >= len(p.MemoryHeaps) {
			return errors.Newf(
				"memory type %d references heap %d, but the device reports %d heaps",
				typeIndex, memoryType.HeapIndex, len(p.MemoryHeaps),
			)
		}
	}

	return CheckPow2(uint(p.NonCoherentAtomSize), "device nonCoherentAtomSize")
}

// Validate checks that a range describes a real sub-region: a non-negative offset and a
// positive size.
func (r MappedMemoryRange[M]) Validate() error {
	if r.Offset < 0 {
		return errors.Newf("mapped memory range has negative offset %d", r.Offset)
	}
	if r.Size <= 0 {
		return errors.Newf("mapped memory range has non-positive size %d", r.Size)
	}

	return nil
}
