package domain

// MaxUsers is the ceiling on user slots allocatable across a company hierarchy.
const MaxUsers = 500

// QuantityTotaler reports the aggregate quantity already allocated.
type QuantityTotaler interface {
	TotalQuantity() int
}

// RemainingCapacity returns how many user slots are still free.
func RemainingCapacity(t QuantityTotaler) int {
	return MaxUsers - t.TotalQuantity()
}

// CanAccommodate reports whether additional slots fit under the ceiling.
func CanAccommodate(t QuantityTotaler, additional int) bool {
	return additional <= RemainingCapacity(t)
}
