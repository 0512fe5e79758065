//go:build !tinygo

package hal

// Modeled NVIC for host builds.
var (
	vectorEnabled  [32]bool
	vectorPriority [32]uint8
)

func enableVector(irq uint32, prio uint8) {
	vectorPriority[irq] = prio
	vectorEnabled[irq] = true
}

func disableVector(irq uint32) {
	vectorEnabled[irq] = false
}

// VectorEnabled reports whether irq is enabled in the modeled NVIC.
func VectorEnabled(irq uint32) bool {
	return vectorEnabled[irq]
}

// VectorPriority returns the last priority programmed for irq.
func VectorPriority(irq uint32) uint8 {
	return vectorPriority[irq]
}

// ResetVectors disables every modeled vector.
func ResetVectors() {
	vectorEnabled = [32]bool{}
	vectorPriority = [32]uint8{}
}
