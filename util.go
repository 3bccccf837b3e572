package memdevice

import "github.com/cockroachdb/errors"

// PowerOfTwoError is returned when a value that must be a power of two, such as a device's
// non-coherent atom size, is not one.
var PowerOfTwoError error = errors.New("number must be a power of two")

type Number interface {
	~int | ~uint
}

// CheckPow2 verifies that number is a power of two and wraps PowerOfTwoError with the value's
// name when it is not.
func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return errors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the nearest multiple of alignment, which must be a power of two.
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// AlignDown rounds value down to the nearest multiple of alignment, which must be a power of
// two.
func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}
