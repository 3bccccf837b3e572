package vulkan

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/memdevice"
)

// MemoryPropertiesFromVulkan translates Vulkan memory property flags into contract flags. Only
// the five properties the contract recognizes are carried over; any other bit is dropped.
func MemoryPropertiesFromVulkan(props core1_0.MemoryPropertyFlags) memdevice.MemoryPropertyFlags {
	var outProps memdevice.MemoryPropertyFlags

	if props&core1_0.MemoryPropertyDeviceLocal != 0 {
		outProps |= memdevice.MemoryPropertyDeviceLocal
	}
	if props&core1_0.MemoryPropertyHostVisible != 0 {
		outProps |= memdevice.MemoryPropertyHostVisible
	}
	if props&core1_0.MemoryPropertyHostCoherent != 0 {
		outProps |= memdevice.MemoryPropertyHostCoherent
	}
	if props&core1_0.MemoryPropertyHostCached != 0 {
		outProps |= memdevice.MemoryPropertyHostCached
	}
	if props&core1_0.MemoryPropertyLazilyAllocated != 0 {
		outProps |= memdevice.MemoryPropertyLazilyAllocated
	}

	return outProps
}

// MemoryPropertiesToVulkan translates contract memory property flags into Vulkan flags.
func MemoryPropertiesToVulkan(props memdevice.MemoryPropertyFlags) core1_0.MemoryPropertyFlags {
	var outProps core1_0.MemoryPropertyFlags

	if props&memdevice.MemoryPropertyDeviceLocal != 0 {
		outProps |= core1_0.MemoryPropertyDeviceLocal
	}
	if props&memdevice.MemoryPropertyHostVisible != 0 {
		outProps |= core1_0.MemoryPropertyHostVisible
	}
	if props&memdevice.MemoryPropertyHostCoherent != 0 {
		outProps |= core1_0.MemoryPropertyHostCoherent
	}
	if props&memdevice.MemoryPropertyHostCached != 0 {
		outProps |= core1_0.MemoryPropertyHostCached
	}
	if props&memdevice.MemoryPropertyLazilyAllocated != 0 {
		outProps |= core1_0.MemoryPropertyLazilyAllocated
	}

	return outProps
}
