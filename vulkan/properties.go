package vulkan

import (
	"math"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/extensions/v2/khr_get_physical_device_properties2"
	khr_get_physical_device_properties2_shim "github.com/vkngwrapper/extensions/v2/khr_get_physical_device_properties2/shim"
	"github.com/vkngwrapper/extensions/v2/khr_maintenance3"
	"github.com/vkngwrapper/memdevice"
)

// extendedQuerySource is the slice of khr_get_physical_device_properties2 the prober consumes.
// Both core1_1.InstanceScopedPhysicalDevice and the extension shim satisfy it.
type extendedQuerySource interface {
	Properties2(out *core1_1.PhysicalDeviceProperties2) error
	Features2(out *core1_1.PhysicalDeviceFeatures2) error
}

// propertyQueries records which extended query paths are open to the prober. It is computed
// once, up front, from the negotiated version and the device's extension list; the query sites
// branch on it rather than re-deriving availability.
type propertyQueries struct {
	// ExtendedProperties indicates the chained properties query, and with it the maintenance3
	// maximum allocation size limit, can be issued
	ExtendedProperties bool
	// ExtendedFeatures indicates the chained features query, and with it the buffer device
	// address feature bit, can be issued
	ExtendedFeatures bool
}

// resolvePropertyQueries determines which extended queries are available at the negotiated
// version. Each capability was promoted to core in some Vulkan release: below that release the
// matching extension must appear in the device's extension list, at or above it the version
// number alone is trusted, exactly as the promotion rules guarantee. The extension list is
// enumerated at most once, and only when some capability is still unaccounted for.
func resolvePropertyQueries(version common.APIVersion, physicalDevice core1_0.PhysicalDevice) (propertyQueries, error) {
	// khr_get_physical_device_properties2 and khr_maintenance3 are core since 1.1, the
	// buffer device address feature query since 1.2
	hasProperties2 := version.Minor() >= 1
	hasMaintenance3 := version.Minor() >= 1
	hasBufferDeviceAddress := version.Minor() >= 2

	if !hasProperties2 || !hasMaintenance3 || !hasBufferDeviceAddress {
		extensions, _, err := physicalDevice.EnumerateDeviceExtensionProperties()
		if err != nil {
			return propertyQueries{}, err
		}

		if !hasProperties2 {
			_, hasProperties2 = extensions[khr_get_physical_device_properties2.ExtensionName]
		}
		if !hasMaintenance3 {
			_, hasMaintenance3 = extensions[khr_maintenance3.ExtensionName]
		}
		if !hasBufferDeviceAddress {
			_, hasBufferDeviceAddress = extensions[khr_buffer_device_address.ExtensionName]
		}
	}

	return propertyQueries{
		ExtendedProperties: hasProperties2 && hasMaintenance3,
		ExtendedFeatures:   hasProperties2 && hasBufferDeviceAddress,
	}, nil
}

// extendedQueries locates an object that can serve the chained property and feature queries,
// or returns nil when neither query will be issued. On core 1.1 and up the promoted
// instance-scoped physical device serves them; on 1.0 the khr_get_physical_device_properties2
// extension does, through its shim.
func extendedQueries(
	instance core1_0.Instance,
	version common.APIVersion,
	physicalDevice core1_0.PhysicalDevice,
	queries propertyQueries,
) extendedQuerySource {
	if !queries.ExtendedProperties && !queries.ExtendedFeatures {
		return nil
	}

	if version.Minor() >= 1 {
		physicalDevice11 := core1_1.PromoteInstanceScopedPhysicalDevice(physicalDevice)
		if physicalDevice11 != nil {
			return physicalDevice11
		}

		// Promotion only fails when the instance was created below 1.1, which violates the
		// version contract of PhysicalDeviceProperties
		return nil
	}

	extension := khr_get_physical_device_properties2.CreateExtensionFromInstance(instance)
	return khr_get_physical_device_properties2_shim.NewShim(extension, physicalDevice)
}

// PhysicalDeviceProperties collects the memory capabilities of physicalDevice into a
// memdevice.DeviceProperties record, suitable for constructing an allocator. Memory types and
// heaps are always enumerated; the maximum single allocation size and the buffer device
// address feature bit are filled in only when the negotiated version or the device's
// extensions make their queries available, and otherwise keep their defaults (math.MaxInt and
// false).
//
// The caller must uphold the following:
//
// - version must not be higher than the API version actually negotiated for instance.
//
// - physicalDevice must have been enumerated from instance.
//
// - On versions below 1.1, if the khr_get_physical_device_properties2 extension is supported
// by the device, it must also have been enabled when instance was created.
//
// - Even when the returned record reports BufferDeviceAddress as true, the matching feature
// (and, before 1.2, the khr_buffer_device_address extension) must be enabled explicitly at
// device creation before requesting memdevice.AllocationDeviceAddress allocations. Otherwise,
// set the field to false before handing the record to the allocator.
func PhysicalDeviceProperties(
	instance core1_0.Instance,
	version common.APIVersion,
	physicalDevice core1_0.PhysicalDevice,
) (*memdevice.DeviceProperties, error) {
	queries, err := resolvePropertyQueries(version, physicalDevice)
	if err != nil {
		return nil, err
	}

	source := extendedQueries(instance, version, physicalDevice, queries)
	return deviceProperties(physicalDevice, queries, source)
}

func deviceProperties(
	physicalDevice core1_0.PhysicalDevice,
	queries propertyQueries,
	source extendedQuerySource,
) (*memdevice.DeviceProperties, error) {
	memoryProperties := physicalDevice.MemoryProperties()

	// No limit is reported unless the maintenance3 query is available to provide one
	maxMemoryAllocationSize := math.MaxInt
	var limits *core1_0.PhysicalDeviceLimits

	if queries.ExtendedProperties && source != nil {
		var maintenance3 khr_maintenance3.PhysicalDeviceMaintenance3Properties
		properties := core1_1.PhysicalDeviceProperties2{
			NextOutData: common.NextOutData{Next: &maintenance3},
		}

		err := source.Properties2(&properties)
		if err != nil {
			return nil, err
		}

		limits = properties.Properties.Limits
		maxMemoryAllocationSize = maintenance3.MaxMemoryAllocationSize
	} else {
		properties, err := physicalDevice.Properties()
		if err != nil {
			return nil, err
		}

		limits = properties.Limits
	}

	bufferDeviceAddress := false
	if queries.ExtendedFeatures && source != nil {
		var bdaFeatures khr_buffer_device_address.PhysicalDeviceBufferDeviceAddressFeatures
		features := core1_1.PhysicalDeviceFeatures2{
			NextOutData: common.NextOutData{Next: &bdaFeatures},
		}

		err := source.Features2(&features)
		if err != nil {
			return nil, err
		}

		bufferDeviceAddress = bdaFeatures.BufferDeviceAddress
	}

	memoryTypes := make([]memdevice.MemoryType, len(memoryProperties.MemoryTypes))
	for typeIndex, memoryType := range memoryProperties.MemoryTypes {
		memoryTypes[typeIndex] = memdevice.MemoryType{
			PropertyFlags: MemoryPropertiesFromVulkan(memoryType.PropertyFlags),
			HeapIndex:     memoryType.HeapIndex,
		}
	}

	memoryHeaps := make([]memdevice.MemoryHeap, len(memoryProperties.MemoryHeaps))
	for heapIndex, memoryHeap := range memoryProperties.MemoryHeaps {
		memoryHeaps[heapIndex] = memdevice.MemoryHeap{
			Size: memoryHeap.Size,
		}
	}

	return &memdevice.DeviceProperties{
		MemoryTypes:              memoryTypes,
		MemoryHeaps:              memoryHeaps,
		MaxMemoryAllocationCount: limits.MaxMemoryAllocationCount,
		MaxMemoryAllocationSize:  maxMemoryAllocationSize,
		NonCoherentAtomSize:      limits.NonCoherentAtomSize,
		BufferDeviceAddress:      bufferDeviceAddress,
	}, nil
}
