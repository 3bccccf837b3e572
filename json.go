package memdevice

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// PrintJson populates a json object with the contents of the capability record.
func (p *DeviceProperties) PrintJson(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	typeArray := objState.Name("MemoryTypes").Array()
	for _, memoryType := range p.MemoryTypes {
		typeObj := typeArray.Object()
		typeObj.Name("PropertyFlags").String(memoryType.PropertyFlags.String())
		typeObj.Name("HeapIndex").Int(memoryType.HeapIndex)
		typeObj.End()
	}
	typeArray.End()

	heapArray := objState.Name("MemoryHeaps").Array()
	for _, memoryHeap := range p.MemoryHeaps {
		heapObj := heapArray.Object()
		heapObj.Name("Size").Int(memoryHeap.Size)
		heapObj.End()
	}
	heapArray.End()

	objState.Name("MaxMemoryAllocationCount").Int(p.MaxMemoryAllocationCount)
	objState.Name("MaxMemoryAllocationSize").Int(p.MaxMemoryAllocationSize)
	objState.Name("NonCoherentAtomSize").Int(p.NonCoherentAtomSize)
	objState.Name("BufferDeviceAddress").Bool(p.BufferDeviceAddress)
}

// BuildPropertiesString builds a json string describing the capability record, for logging
// and diagnostics.
func (p *DeviceProperties) BuildPropertiesString() string {
	writer := jwriter.NewWriter()
	p.PrintJson(&writer)

	return string(writer.Bytes())
}
