// Package vulkan implements the memdevice contract on top of the vkngwrapper Vulkan bindings:
// a Device wrapper that satisfies memdevice.MemoryDevice for core1_0.DeviceMemory handles, and
// a one-shot prober that assembles a memdevice.DeviceProperties record from a PhysicalDevice.
package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/memdevice"
	"golang.org/x/exp/slog"
)

// Device adapts a core1_0.Device to the memdevice.MemoryDevice contract. It borrows the
// wrapped device for its whole lifetime and never destroys it; beyond the handle it carries
// only the allocation callbacks and logger it was created with, so a Device may be shared
// freely and discarded without cleanup.
type Device struct {
	device    core1_0.Device
	callbacks *driver.AllocationCallbacks
	logger    *slog.Logger
}

var _ memdevice.MemoryDevice[core1_0.DeviceMemory] = &Device{}

// NewDevice wraps device so that it can be consumed through the memdevice.MemoryDevice
// contract.
//
// logger - Optional logger for debug-level operation tracing. When nil, slog.Default() is used.
//
// callbacks - An optional set of allocation callbacks that will be passed to Vulkan on every
// allocate and free performed through the wrapper.
func NewDevice(logger *slog.Logger, device core1_0.Device, callbacks *driver.AllocationCallbacks) *Device {
	if logger == nil {
		logger = slog.Default()
	}

	return &Device{
		device:    device,
		callbacks: callbacks,
		logger:    logger,
	}
}

// outOfMemoryError folds a failed allocate/flush/invalidate result into the contract's memory
// pressure errors. Vulkan documents no other failure codes for these entry points, so anything
// else means the driver broke its contract and there is no safe way to continue.
func outOfMemoryError(res common.VkResult) error {
	switch res {
	case core1_0.VKErrorOutOfDeviceMemory:
		return memdevice.ErrOutOfDeviceMemory
	case core1_0.VKErrorOutOfHostMemory:
		return memdevice.ErrOutOfHostMemory
	}

	panic(fmt.Sprintf("unexpected vulkan error: %+v", res.ToError()))
}

func mapMemoryError(res common.VkResult) error {
	switch res {
	case core1_0.VKErrorOutOfDeviceMemory:
		return memdevice.ErrOutOfDeviceMemory
	case core1_0.VKErrorOutOfHostMemory:
		return memdevice.ErrOutOfHostMemory
	case core1_0.VKErrorMemoryMapFailed:
		return memdevice.ErrMapFailed
	}

	panic(fmt.Sprintf("unexpected vulkan error: %+v", res.ToError()))
}

// AllocateMemory allocates a new DeviceMemory object of the provided size from the memory type
// at memoryTypeIndex. When flags requests memdevice.AllocationDeviceAddress, a
// MemoryAllocateFlagsInfo carrying the device address bit is chained onto the allocation, so
// the returned memory can back device-address-capable buffers; the caller must only request
// this on devices whose capability record reports BufferDeviceAddress, and must have enabled
// the matching feature or extension at device creation.
func (d *Device) AllocateMemory(size int, memoryTypeIndex int, flags memdevice.AllocationFlags) (core1_0.DeviceMemory, error) {
	unknownFlags := flags & ^memdevice.AllocationDeviceAddress
	if unknownFlags != 0 {
		panic(fmt.Sprintf("unrecognized allocation flag bits: %b", int32(unknownFlags)))
	}

	d.logger.Debug("Device::AllocateMemory",
		slog.Int("Size", size),
		slog.Int("MemoryTypeIndex", memoryTypeIndex),
		slog.String("Flags", flags.String()),
	)

	allocInfo := core1_0.MemoryAllocateInfo{
		AllocationSize:  size,
		MemoryTypeIndex: memoryTypeIndex,
	}

	if flags&memdevice.AllocationDeviceAddress != 0 {
		allocInfo.NextOptions = common.NextOptions{
			Next: core1_1.MemoryAllocateFlagsInfo{
				Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
			},
		}
	}

	memory, res, err := d.device.AllocateMemory(d.callbacks, allocInfo)
	if err != nil {
		return nil, errors.Wrapf(outOfMemoryError(res),
			"failed to allocate %d bytes from memory type %d", size, memoryTypeIndex)
	}

	return memory, nil
}

// DeallocateMemory frees memory previously returned from AllocateMemory. Vulkan guarantees
// success for a valid handle, so there is no error path.
func (d *Device) DeallocateMemory(memory core1_0.DeviceMemory) {
	d.logger.Debug("Device::DeallocateMemory")

	memory.Free(d.callbacks)
}

// MapMemory maps size bytes of memory beginning at offset and returns a pointer to the
// mapping. A successful map never yields a nil pointer; Vulkan documents that as impossible,
// so the wrapper panics rather than inventing an error for it.
func (d *Device) MapMemory(memory core1_0.DeviceMemory, offset int, size int) (unsafe.Pointer, error) {
	d.logger.Debug("Device::MapMemory",
		slog.Int("Offset", offset),
		slog.Int("Size", size),
	)

	ptr, res, err := memory.Map(offset, size, 0)
	if err != nil {
		return nil, errors.Wrapf(mapMemoryError(res),
			"failed to map %d bytes at offset %d", size, offset)
	}

	if ptr == nil {
		panic("vulkan reported a successful memory map but returned a nil pointer")
	}

	return ptr, nil
}

// UnmapMemory unmaps a mapping created with MapMemory.
func (d *Device) UnmapMemory(memory core1_0.DeviceMemory) {
	d.logger.Debug("Device::UnmapMemory")

	memory.Unmap()
}

// FlushMemoryRanges makes host writes to the provided ranges available to the device in a
// single batched call. Ranges on non-coherent memory must be aligned to the device's
// non-coherent atom size.
func (d *Device) FlushMemoryRanges(ranges []memdevice.MappedMemoryRange[core1_0.DeviceMemory]) error {
	d.logger.Debug("Device::FlushMemoryRanges", slog.Int("RangeCount", len(ranges)))

	if len(ranges) == 0 {
		return nil
	}

	res, err := d.device.FlushMappedMemoryRanges(vulkanRanges(ranges))
	if err != nil {
		return errors.Wrapf(outOfMemoryError(res),
			"failed to flush %d mapped memory ranges", len(ranges))
	}

	return nil
}

// InvalidateMemoryRanges makes device writes to the provided ranges visible to the host in a
// single batched call. Ranges on non-coherent memory must be aligned to the device's
// non-coherent atom size.
func (d *Device) InvalidateMemoryRanges(ranges []memdevice.MappedMemoryRange[core1_0.DeviceMemory]) error {
	d.logger.Debug("Device::InvalidateMemoryRanges", slog.Int("RangeCount", len(ranges)))

	if len(ranges) == 0 {
		return nil
	}

	res, err := d.device.InvalidateMappedMemoryRanges(vulkanRanges(ranges))
	if err != nil {
		return errors.Wrapf(outOfMemoryError(res),
			"failed to invalidate %d mapped memory ranges", len(ranges))
	}

	return nil
}

// vulkanRanges translates contract ranges into core1_0 ranges. Flush and invalidate batches
// are almost always a handful of ranges, so a small fixed buffer keeps the common case off the
// heap.
func vulkanRanges(ranges []memdevice.MappedMemoryRange[core1_0.DeviceMemory]) []core1_0.MappedMemoryRange {
	var rangeBuffer [4]core1_0.MappedMemoryRange

	outRanges := rangeBuffer[:0]
	if len(ranges) > len(rangeBuffer) {
		outRanges = make([]core1_0.MappedMemoryRange, 0, len(ranges))
	}

	for _, memRange := range ranges {
		memdevice.DebugValidate(memRange)

		outRanges = append(outRanges, core1_0.MappedMemoryRange{
			Memory: memRange.Memory,
			Offset: memRange.Offset,
			Size:   memRange.Size,
		})
	}

	return outRanges
}
