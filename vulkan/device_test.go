package vulkan

import (
	"io"
	"testing"
	"unsafe"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/mocks"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	"github.com/vkngwrapper/memdevice"
	"golang.org/x/exp/slog"
)

func testDevice(ctrl *gomock.Controller) (*mocks.MockDevice, *Device) {
	mockDevice := mocks.NewMockDevice(ctrl)
	logger := slog.New(slog.NewJSONHandler(io.Discard))

	return mockDevice, NewDevice(logger, mockDevice, nil)
}

func TestAllocateMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	mockDevice.EXPECT().AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  1024,
		MemoryTypeIndex: 2,
	}).Return(memory, core1_0.VKSuccess, nil)

	allocated, err := device.AllocateMemory(1024, 2, 0)
	require.NoError(t, err)
	require.Equal(t, memory, allocated)
}

func TestAllocateMemory_DeviceAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	mockDevice.EXPECT().AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  4096,
		MemoryTypeIndex: 0,
		NextOptions: common.NextOptions{
			Next: core1_1.MemoryAllocateFlagsInfo{
				Flags: khr_buffer_device_address.MemoryAllocateDeviceAddress,
			},
		},
	}).Return(memory, core1_0.VKSuccess, nil)

	allocated, err := device.AllocateMemory(4096, 0, memdevice.AllocationDeviceAddress)
	require.NoError(t, err)
	require.Equal(t, memory, allocated)
}

func TestAllocateMemory_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      common.VkResult
		expectedErr error
	}{
		{"OutOfDeviceMemory", core1_0.VKErrorOutOfDeviceMemory, memdevice.ErrOutOfDeviceMemory},
		{"OutOfHostMemory", core1_0.VKErrorOutOfHostMemory, memdevice.ErrOutOfHostMemory},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDevice, device := testDevice(ctrl)

			mockDevice.EXPECT().AllocateMemory(nil, gomock.Any()).
				Return(nil, test.result, test.result.ToError())

			_, err := device.AllocateMemory(1024, 0, 0)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestAllocateMemory_UnexpectedErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	mockDevice.EXPECT().AllocateMemory(nil, gomock.Any()).
		Return(nil, core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError())

	require.Panics(t, func() {
		_, _ = device.AllocateMemory(1024, 0, 0)
	})
}

func TestAllocateMemory_UnknownFlagsPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	require.Panics(t, func() {
		_, _ = device.AllocateMemory(1024, 0, memdevice.AllocationFlags(1<<5))
	})
}

func TestDeallocateMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	memory.EXPECT().Free(nil)

	device.DeallocateMemory(memory)
}

func TestMapMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	data := make([]byte, 256)
	dataPtr := unsafe.Pointer(&data[0])

	memory := mocks.EasyMockDeviceMemory(ctrl)
	memory.EXPECT().Map(64, 128, core1_0.MemoryMapFlags(0)).
		Return(dataPtr, core1_0.VKSuccess, nil)

	ptr, err := device.MapMemory(memory, 64, 128)
	require.NoError(t, err)
	require.Equal(t, dataPtr, ptr)
}

func TestMapMemory_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      common.VkResult
		expectedErr error
	}{
		{"OutOfDeviceMemory", core1_0.VKErrorOutOfDeviceMemory, memdevice.ErrOutOfDeviceMemory},
		{"OutOfHostMemory", core1_0.VKErrorOutOfHostMemory, memdevice.ErrOutOfHostMemory},
		{"MapFailed", core1_0.VKErrorMemoryMapFailed, memdevice.ErrMapFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			_, device := testDevice(ctrl)

			memory := mocks.EasyMockDeviceMemory(ctrl)
			memory.EXPECT().Map(0, 128, core1_0.MemoryMapFlags(0)).
				Return(unsafe.Pointer(nil), test.result, test.result.ToError())

			_, err := device.MapMemory(memory, 0, 128)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestMapMemory_UnexpectedErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, 128, core1_0.MemoryMapFlags(0)).
		Return(unsafe.Pointer(nil), core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError())

	require.Panics(t, func() {
		_, _ = device.MapMemory(memory, 0, 128)
	})
}

func TestMapMemory_NilPointerPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, 128, core1_0.MemoryMapFlags(0)).
		Return(unsafe.Pointer(nil), core1_0.VKSuccess, nil)

	require.Panics(t, func() {
		_, _ = device.MapMemory(memory, 0, 128)
	})
}

func TestUnmapMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	memory.EXPECT().Unmap()

	device.UnmapMemory(memory)
}

func TestFlushMemoryRanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory1 := mocks.EasyMockDeviceMemory(ctrl)
	memory2 := mocks.EasyMockDeviceMemory(ctrl)

	mockDevice.EXPECT().FlushMappedMemoryRanges([]core1_0.MappedMemoryRange{
		{Memory: memory1, Offset: 0, Size: 128},
		{Memory: memory2, Offset: 256, Size: 64},
	}).Return(core1_0.VKSuccess, nil)

	err := device.FlushMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
		{Memory: memory1, Offset: 0, Size: 128},
		{Memory: memory2, Offset: 256, Size: 64},
	})
	require.NoError(t, err)
}

func TestFlushMemoryRanges_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	require.NoError(t, device.FlushMemoryRanges(nil))
}

func TestFlushMemoryRanges_LargeBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)

	ranges := make([]memdevice.MappedMemoryRange[core1_0.DeviceMemory], 9)
	expectedRanges := make([]core1_0.MappedMemoryRange, 9)
	for i := 0; i < len(ranges); i++ {
		ranges[i] = memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
			Memory: memory,
			Offset: i * 128,
			Size:   128,
		}
		expectedRanges[i] = core1_0.MappedMemoryRange{
			Memory: memory,
			Offset: i * 128,
			Size:   128,
		}
	}

	mockDevice.EXPECT().FlushMappedMemoryRanges(expectedRanges).Return(core1_0.VKSuccess, nil)

	require.NoError(t, device.FlushMemoryRanges(ranges))
}

func TestFlushMemoryRanges_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      common.VkResult
		expectedErr error
	}{
		{"OutOfDeviceMemory", core1_0.VKErrorOutOfDeviceMemory, memdevice.ErrOutOfDeviceMemory},
		{"OutOfHostMemory", core1_0.VKErrorOutOfHostMemory, memdevice.ErrOutOfHostMemory},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDevice, device := testDevice(ctrl)

			memory := mocks.EasyMockDeviceMemory(ctrl)
			mockDevice.EXPECT().FlushMappedMemoryRanges(gomock.Any()).
				Return(test.result, test.result.ToError())

			err := device.FlushMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
				{Memory: memory, Offset: 0, Size: 128},
			})
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestFlushMemoryRanges_UnexpectedErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	mockDevice.EXPECT().FlushMappedMemoryRanges(gomock.Any()).
		Return(core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError())

	require.Panics(t, func() {
		_ = device.FlushMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
			{Memory: memory, Offset: 0, Size: 128},
		})
	})
}

func TestInvalidateMemoryRanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)

	mockDevice.EXPECT().InvalidateMappedMemoryRanges([]core1_0.MappedMemoryRange{
		{Memory: memory, Offset: 512, Size: 256},
	}).Return(core1_0.VKSuccess, nil)

	err := device.InvalidateMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
		{Memory: memory, Offset: 512, Size: 256},
	})
	require.NoError(t, err)
}

func TestInvalidateMemoryRanges_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, device := testDevice(ctrl)

	require.NoError(t, device.InvalidateMemoryRanges(nil))
}

func TestInvalidateMemoryRanges_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		result      common.VkResult
		expectedErr error
	}{
		{"OutOfDeviceMemory", core1_0.VKErrorOutOfDeviceMemory, memdevice.ErrOutOfDeviceMemory},
		{"OutOfHostMemory", core1_0.VKErrorOutOfHostMemory, memdevice.ErrOutOfHostMemory},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDevice, device := testDevice(ctrl)

			memory := mocks.EasyMockDeviceMemory(ctrl)
			mockDevice.EXPECT().InvalidateMappedMemoryRanges(gomock.Any()).
				Return(test.result, test.result.ToError())

			err := device.InvalidateMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
				{Memory: memory, Offset: 0, Size: 128},
			})
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestInvalidateMemoryRanges_UnexpectedErrorPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDevice, device := testDevice(ctrl)

	memory := mocks.EasyMockDeviceMemory(ctrl)
	mockDevice.EXPECT().InvalidateMappedMemoryRanges(gomock.Any()).
		Return(core1_0.VKErrorDeviceLost, core1_0.VKErrorDeviceLost.ToError())

	require.Panics(t, func() {
		_ = device.InvalidateMemoryRanges([]memdevice.MappedMemoryRange[core1_0.DeviceMemory]{
			{Memory: memory, Offset: 0, Size: 128},
		})
	})
}
