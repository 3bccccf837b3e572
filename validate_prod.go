//go:build !debug_mem_device

package memdevice

// DebugValidate will call Validate on the provided object and panics if any errors are
// returned. This method no-ops unless the debug_mem_device build tag is present
func DebugValidate(validatable Validatable) {
}
